package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/jmgilman/go/fs/storefs"
)

type app struct {
	fs     *storefs.FS
	stdin  io.Reader
	stdout io.Writer
}

// path qualifies bare keys with the adapter scheme.
func (a *app) path(arg string) string {
	if strings.Contains(arg, "://") {
		return arg
	}
	return a.fs.Scheme() + ":///" + strings.TrimPrefix(arg, "/")
}

type command struct {
	name  string
	usage string
	help  string
	run   func(a *app, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"exists", "exists <path>", "report whether a path exists", runExists},
		{"isdir", "isdir <path>", "report whether a path is a directory", runIsDir},
		{"stat", "stat <path>", "describe a file or directory", runStat},
		{"ls", "ls [-l] [path]", "list a directory", runList},
		{"mkdir", "mkdir [-p] <path>", "create a directory", runMkdir},
		{"rm", "rm <path>", "remove a file or empty directory", runRemove},
		{"rmtree", "rmtree <path>", "remove a directory tree", runRmTree},
		{"cp", "cp <src> <dest>", "copy a file", runCopy},
		{"mv", "mv <src> <dest>", "rename a file", runRename},
		{"cat", "cat <path>", "print a file", runCat},
		{"put", "put <path> [file|-]", "store a local file or stdin", runPut},
		{"append", "append <path> [file|-]", "append a local file or stdin", runAppend},
		{"walk", "walk [path]", "print every path below a directory", runWalk},
	}
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func exactArgs(name string, args []string, n int) error {
	if len(args) != n {
		return usagef("%s: expected %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

// optionalPath returns the single optional path argument, defaulting to
// the root.
func optionalPath(name string, args []string) (string, error) {
	switch len(args) {
	case 0:
		return "/", nil
	case 1:
		return args[0], nil
	}
	return "", usagef("%s: expected at most 1 argument, got %d", name, len(args))
}

func subFlags(name string) *flag.FlagSet {
	fl := flag.NewFlagSet(name, flag.ContinueOnError)
	fl.SetOutput(io.Discard)
	return fl
}

func runExists(a *app, args []string) error {
	if err := exactArgs("exists", args, 1); err != nil {
		return err
	}
	ok, err := a.fs.Exists(a.path(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, ok)
	return nil
}

func runIsDir(a *app, args []string) error {
	if err := exactArgs("isdir", args, 1); err != nil {
		return err
	}
	ok, err := a.fs.IsDir(a.path(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, ok)
	return nil
}

func runStat(a *app, args []string) error {
	if err := exactArgs("stat", args, 1); err != nil {
		return err
	}
	info, err := a.fs.Stat(a.path(args[0]))
	if err != nil {
		return err
	}
	kind := "file"
	if info.IsDir() {
		kind = "directory"
	}
	fmt.Fprintf(a.stdout, "name: %s\ntype: %s\nsize: %d\nmode: %s\n", info.Name(), kind, info.Size(), info.Mode())
	if !info.ModTime().IsZero() {
		fmt.Fprintf(a.stdout, "modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runList(a *app, args []string) error {
	fl := subFlags("ls")
	long := fl.Bool("l", false, "long listing")
	if err := fl.Parse(args); err != nil {
		return usagef("ls: %v", err)
	}
	target, err := optionalPath("ls", fl.Args())
	if err != nil {
		return err
	}

	if !*long {
		names, err := a.fs.ListDir(a.path(target))
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Fprintln(a.stdout, name)
		}
		return nil
	}

	entries, err := a.fs.ReadDir(a.path(target))
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return err
		}
		size, modified := "-", "-"
		if !entry.IsDir() {
			size = humanize.IBytes(uint64(info.Size()))
		}
		if !info.ModTime().IsZero() {
			modified = humanize.Time(info.ModTime())
		}
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", info.Mode(), size, modified, name)
	}
	return tw.Flush()
}

func runMkdir(a *app, args []string) error {
	fl := subFlags("mkdir")
	parents := fl.Bool("p", false, "create missing parents")
	if err := fl.Parse(args); err != nil {
		return usagef("mkdir: %v", err)
	}
	if err := exactArgs("mkdir", fl.Args(), 1); err != nil {
		return err
	}
	if *parents {
		return a.fs.MakeDirs(a.path(fl.Arg(0)))
	}
	return a.fs.Mkdir(a.path(fl.Arg(0)))
}

func runRemove(a *app, args []string) error {
	if err := exactArgs("rm", args, 1); err != nil {
		return err
	}
	return a.fs.Remove(a.path(args[0]))
}

func runRmTree(a *app, args []string) error {
	if err := exactArgs("rmtree", args, 1); err != nil {
		return err
	}
	return a.fs.RmTree(a.path(args[0]))
}

func runCopy(a *app, args []string) error {
	if err := exactArgs("cp", args, 2); err != nil {
		return err
	}
	return a.fs.Copy(a.path(args[0]), a.path(args[1]))
}

func runRename(a *app, args []string) error {
	if err := exactArgs("mv", args, 2); err != nil {
		return err
	}
	return a.fs.Rename(a.path(args[0]), a.path(args[1]))
}

func runCat(a *app, args []string) error {
	if err := exactArgs("cat", args, 1); err != nil {
		return err
	}
	return a.fs.WithReader(a.path(args[0]), func(r *storefs.Reader) error {
		_, err := io.Copy(a.stdout, r)
		return err
	})
}

// source opens the optional local input argument; "-" and no argument mean
// stdin.
func (a *app) source(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(a.stdin), nil
	}
	return os.Open(args[0])
}

func runPut(a *app, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usagef("put: expected 1 or 2 arguments, got %d", len(args))
	}
	src, err := a.source(args[1:])
	if err != nil {
		return err
	}
	defer src.Close()

	return a.fs.WithWriter(a.path(args[0]), func(w *storefs.Writer) error {
		_, err := io.Copy(w, src)
		return err
	})
}

func runAppend(a *app, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usagef("append: expected 1 or 2 arguments, got %d", len(args))
	}
	src, err := a.source(args[1:])
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := a.fs.Append(a.path(args[0]))
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Abort()
		return err
	}
	return w.Close()
}

func runWalk(a *app, args []string) error {
	target, err := optionalPath("walk", args)
	if err != nil {
		return err
	}
	return a.fs.Walk(a.path(target), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && !strings.HasSuffix(path, "/") {
			path += "/"
		}
		fmt.Fprintln(a.stdout, path)
		return nil
	})
}
