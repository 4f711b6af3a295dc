package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "loxvm"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s disassemble <path>
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and virtual machine for the Lox programming language.

With no <path>, starts an interactive read-eval-print loop. With one
<path>, compiles and runs that file, exiting 0 on success, 65 on a
compile error and 70 on a runtime error.

The <command> "disassemble" compiles <path> and prints its bytecode
listing instead of running it.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

More information on the %[1]s repository:
       https://github.com/mna/loxvm
`, binName)
)

// exit codes follow the convention of the original clox interpreter.
const (
	exitDataErr mainer.ExitCode = 65 // compile-time error
	exitIOErr   mainer.ExitCode = 70 // runtime error
	exitUsage   mainer.ExitCode = 64 // bad command-line usage
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args  []string
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	switch {
	case len(c.args) == 0:
		c.cmdFn = c.Repl

	case c.args[0] == "disassemble":
		if len(c.args) != 2 {
			return errors.New("disassemble: exactly one file path is required")
		}
		cmds := buildCmds(c)
		c.cmdFn = cmds["disassemble"]

	case len(c.args) == 1:
		c.cmdFn = c.Run

	default:
		return fmt.Errorf("too many arguments: %s", c.args[1])
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return exitUsage
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	cmdArgs := c.args
	if len(cmdArgs) > 0 && cmdArgs[0] == "disassemble" {
		cmdArgs = cmdArgs[1:]
	}
	if err := c.cmdFn(ctx, stdio, cmdArgs); err != nil {
		return exitCodeFor(err)
	}
	return mainer.Success
}

// exitCodeFor maps an interpretation failure to the process exit code a
// Lox interpreter is expected to produce: 65 for a compile-time error, 70
// for a runtime error, and a generic failure for anything else (e.g. a
// file that could not be read).
func exitCodeFor(err error) mainer.ExitCode {
	var ce *compileError
	if errors.As(err, &ce) {
		return exitDataErr
	}
	var re *runtimeFailure
	if errors.As(err, &re) {
		return exitIOErr
	}
	return mainer.Failure
}

// valid commands are those that take a mainer.Stdio and a slice of strings
// as input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
