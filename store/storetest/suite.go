// Package storetest provides a conformance test suite for store.Client
// implementations and a fault-injecting client for adapter tests.
//
// Every backend runs the suite against a fresh, empty store:
//
//	func TestConformance(t *testing.T) {
//	    storetest.TestSuite(t, func() store.Client {
//	        return mybackend.New()
//	    })
//	}
package storetest

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/jmgilman/go/fs/storefs/store"
)

// Config adapts the suite to backend characteristics.
type Config struct {
	// SkipTests lists subtest names to skip (e.g. "ListPrefix/EarlyBreak").
	SkipTests []string

	// BreakWrites makes writes to the given client fail until the returned
	// function is called. Backends that cannot fail a write midway leave it
	// nil, which skips PutGet/FailedPutKeepsPrevious.
	BreakWrites func(c store.Client) (restore func())
}

// TestSuite runs every conformance test with the default configuration.
// The newClient function must return a fresh, empty store for each call.
func TestSuite(t *testing.T, newClient func() store.Client) {
	TestSuiteWithConfig(t, newClient, Config{})
}

// TestSuiteWithConfig runs every conformance test with cfg.
func TestSuiteWithConfig(t *testing.T, newClient func() store.Client, cfg Config) {
	shouldSkip := func(name string) bool {
		return slices.Contains(cfg.SkipTests, name)
	}

	groups := []struct {
		name  string
		tests map[string]func(*testing.T, store.Client)
	}{
		{"PutGet", map[string]func(*testing.T, store.Client){
			"RoundTrip":     testPutGetRoundTrip,
			"EmptyObject":   testPutGetEmpty,
			"Overwrite":     testPutOverwrite,
			"GetMissing":    testGetMissing,
			"CallerCopy":    testPutCallerCopy,
			"NestedKeys":    testNestedKeys,
			"MarkerObjects": testMarkerObjects,

			"FailedPutKeepsPrevious": testFailedPutKeepsPrevious(cfg.BreakWrites),
		}},
		{"Stat", map[string]func(*testing.T, store.Client){
			"Size":    testStatSize,
			"Missing": testStatMissing,
			"Marker":  testStatMarker,
			"Exact":   testStatExact,
		}},
		{"Delete", map[string]func(*testing.T, store.Client){
			"Existing": testDeleteExisting,
			"Missing":  testDeleteMissing,
		}},
		{"ListPrefix", map[string]func(*testing.T, store.Client){
			"Prefix":     testListPrefix,
			"Empty":      testListEmpty,
			"All":        testListAll,
			"EarlyBreak": testListEarlyBreak,
			"Once":       testListOnce,
		}},
	}

	for _, group := range groups {
		t.Run(group.name, func(t *testing.T) {
			if shouldSkip(group.name) {
				t.Skip("Skipped by backend configuration")
			}
			names := make([]string, 0, len(group.tests))
			for name := range group.tests {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				t.Run(name, func(t *testing.T) {
					if shouldSkip(group.name + "/" + name) {
						t.Skip("Skipped by backend configuration")
					}
					group.tests[name](t, newClient())
				})
			}
		})
	}
}

func mustPut(t *testing.T, c store.Client, key string, data []byte) {
	t.Helper()
	if err := c.Put(context.Background(), key, data); err != nil {
		t.Fatalf("Put(%q): setup failed: %v", key, err)
	}
}

func mustList(t *testing.T, c store.Client, prefix string) []string {
	t.Helper()
	keys, err := store.Collect(c.ListPrefix(context.Background(), prefix))
	if err != nil {
		t.Fatalf("ListPrefix(%q): got error %v, want nil", prefix, err)
	}
	slices.Sort(keys)
	return keys
}

func testPutGetRoundTrip(t *testing.T, c store.Client) {
	want := []byte("Hello,\nworld!")
	mustPut(t, c, "test_write_read", want)

	got, err := c.Get(context.Background(), "test_write_read")
	if err != nil {
		t.Fatalf("Get(test_write_read): got error %v, want nil", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get(test_write_read): got %q, want %q", got, want)
	}
}

func testPutGetEmpty(t *testing.T, c store.Client) {
	mustPut(t, c, "empty", nil)

	got, err := c.Get(context.Background(), "empty")
	if err != nil {
		t.Fatalf("Get(empty): got error %v, want nil", err)
	}
	if len(got) != 0 {
		t.Errorf("Get(empty): got %d bytes, want 0", len(got))
	}
}

func testPutOverwrite(t *testing.T, c store.Client) {
	mustPut(t, c, "file", []byte("a much longer original content"))
	mustPut(t, c, "file", []byte("short"))

	got, err := c.Get(context.Background(), "file")
	if err != nil {
		t.Fatalf("Get(file): got error %v, want nil", err)
	}
	if string(got) != "short" {
		t.Errorf("Get(file) after overwrite: got %q, want %q", got, "short")
	}
}

func testFailedPutKeepsPrevious(breakWrites func(store.Client) func()) func(*testing.T, store.Client) {
	return func(t *testing.T, c store.Client) {
		if breakWrites == nil {
			t.Skip("Backend cannot inject write failures")
		}
		mustPut(t, c, "file", []byte("previous content"))

		restore := breakWrites(c)
		err := c.Put(context.Background(), "file", []byte("replacement"))
		restore()
		if err == nil {
			t.Fatalf("Put(file) with failing writes: got nil error, want failure")
		}

		got, err := c.Get(context.Background(), "file")
		if err != nil {
			t.Fatalf("Get(file) after failed Put: got error %v, want nil", err)
		}
		if string(got) != "previous content" {
			t.Errorf("Get(file) after failed Put: got %q, want %q", got, "previous content")
		}
		if keys := mustList(t, c, ""); !slices.Equal(keys, []string{"file"}) {
			t.Errorf("ListPrefix(\"\") after failed Put: got %v, want [file]", keys)
		}
	}
}

func testGetMissing(t *testing.T, c store.Client) {
	_, err := c.Get(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotExist) {
		t.Errorf("Get(missing): got error %v, want store.ErrNotExist", err)
	}
}

func testPutCallerCopy(t *testing.T, c store.Client) {
	data := []byte("original")
	mustPut(t, c, "copy", data)
	copy(data, "XXXXXXXX")

	got, err := c.Get(context.Background(), "copy")
	if err != nil {
		t.Fatalf("Get(copy): got error %v, want nil", err)
	}
	if string(got) != "original" {
		t.Errorf("Get(copy): got %q, want %q (store must not alias caller buffers)", got, "original")
	}
}

func testNestedKeys(t *testing.T, c store.Client) {
	mustPut(t, c, "a/b/c.txt", []byte("nested"))

	got, err := c.Get(context.Background(), "a/b/c.txt")
	if err != nil {
		t.Fatalf("Get(a/b/c.txt): got error %v, want nil", err)
	}
	if string(got) != "nested" {
		t.Errorf("Get(a/b/c.txt): got %q, want %q", got, "nested")
	}

	if _, err := c.Stat(context.Background(), "a/b"); !errors.Is(err, store.ErrNotExist) {
		t.Errorf("Stat(a/b): got error %v, want store.ErrNotExist (no implicit objects)", err)
	}
}

func testMarkerObjects(t *testing.T, c store.Client) {
	mustPut(t, c, store.MarkerKey("dir"), nil)
	mustPut(t, c, "dir", []byte("file with the same name"))

	keys := mustList(t, c, "dir")
	want := []string{"dir", "dir/"}
	if !slices.Equal(keys, want) {
		t.Errorf("ListPrefix(dir): got %v, want %v", keys, want)
	}
}

func testStatSize(t *testing.T, c store.Client) {
	mustPut(t, c, "sized", []byte("12345"))

	info, err := c.Stat(context.Background(), "sized")
	if err != nil {
		t.Fatalf("Stat(sized): got error %v, want nil", err)
	}
	if info.Size != 5 {
		t.Errorf("Stat(sized).Size: got %d, want 5", info.Size)
	}
	if info.Key != "sized" {
		t.Errorf("Stat(sized).Key: got %q, want %q", info.Key, "sized")
	}
	if info.IsMarker {
		t.Errorf("Stat(sized).IsMarker: got true, want false")
	}
}

func testStatMissing(t *testing.T, c store.Client) {
	_, err := c.Stat(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotExist) {
		t.Errorf("Stat(missing): got error %v, want store.ErrNotExist", err)
	}
}

func testStatMarker(t *testing.T, c store.Client) {
	mustPut(t, c, store.MarkerKey("dir"), nil)

	info, err := c.Stat(context.Background(), store.MarkerKey("dir"))
	if err != nil {
		t.Fatalf("Stat(dir/): got error %v, want nil", err)
	}
	if !info.IsMarker {
		t.Errorf("Stat(dir/).IsMarker: got false, want true")
	}
	if info.Size != 0 {
		t.Errorf("Stat(dir/).Size: got %d, want 0", info.Size)
	}
}

func testStatExact(t *testing.T, c store.Client) {
	mustPut(t, c, "prefix/child", []byte("x"))

	if _, err := c.Stat(context.Background(), "prefix"); !errors.Is(err, store.ErrNotExist) {
		t.Errorf("Stat(prefix): got error %v, want store.ErrNotExist (stat is exact match)", err)
	}
}

func testDeleteExisting(t *testing.T, c store.Client) {
	mustPut(t, c, "doomed", []byte("x"))

	if err := c.Delete(context.Background(), "doomed"); err != nil {
		t.Fatalf("Delete(doomed): got error %v, want nil", err)
	}
	if _, err := c.Stat(context.Background(), "doomed"); !errors.Is(err, store.ErrNotExist) {
		t.Errorf("Stat(doomed) after Delete: got error %v, want store.ErrNotExist", err)
	}
}

func testDeleteMissing(t *testing.T, c store.Client) {
	if err := c.Delete(context.Background(), "never-existed"); err != nil {
		t.Errorf("Delete(never-existed): got error %v, want nil", err)
	}
}

func testListPrefix(t *testing.T, c store.Client) {
	for _, key := range []string{"d/a", "d/b/c", "d/", "dx", "e"} {
		mustPut(t, c, key, []byte("x"))
	}

	got := mustList(t, c, "d/")
	want := []string{"d/", "d/a", "d/b/c"}
	if !slices.Equal(got, want) {
		t.Errorf("ListPrefix(d/): got %v, want %v", got, want)
	}
}

func testListEmpty(t *testing.T, c store.Client) {
	mustPut(t, c, "other", []byte("x"))

	if got := mustList(t, c, "none/"); len(got) != 0 {
		t.Errorf("ListPrefix(none/): got %v, want no keys", got)
	}
}

func testListAll(t *testing.T, c store.Client) {
	for _, key := range []string{"z", "a/b", "m/"} {
		mustPut(t, c, key, nil)
	}

	got := mustList(t, c, "")
	want := []string{"a/b", "m/", "z"}
	if !slices.Equal(got, want) {
		t.Errorf("ListPrefix(\"\"): got %v, want %v", got, want)
	}
}

func testListEarlyBreak(t *testing.T, c store.Client) {
	for _, key := range []string{"p/1", "p/2", "p/3"} {
		mustPut(t, c, key, nil)
	}

	count := 0
	for _, err := range c.ListPrefix(context.Background(), "p/") {
		if err != nil {
			t.Fatalf("ListPrefix(p/): got error %v, want nil", err)
		}
		count++
		break
	}
	if count != 1 {
		t.Errorf("ListPrefix(p/) with early break: got %d keys, want 1", count)
	}

	// The store must still be usable after an abandoned listing.
	if got := mustList(t, c, "p/"); len(got) != 3 {
		t.Errorf("ListPrefix(p/) after early break: got %v, want 3 keys", got)
	}
}

func testListOnce(t *testing.T, c store.Client) {
	mustPut(t, c, "k", nil)

	seq := c.ListPrefix(context.Background(), "")
	if _, err := store.Collect(seq); err != nil {
		t.Fatalf("first range: got error %v, want nil", err)
	}
	if _, err := store.Collect(seq); !errors.Is(err, store.ErrProtocol) {
		t.Errorf("second range: got error %v, want store.ErrProtocol", err)
	}
}
