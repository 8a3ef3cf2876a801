package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/kislikjeka/fintrack/internal/platform/auth"
)

type hashPasswordCmd struct {
	in  io.Reader
	out io.Writer
}

func (*hashPasswordCmd) Name() string     { return "hash-password" }
func (*hashPasswordCmd) Synopsis() string { return "hash the operator password for OWNER_PASSWORD_HASH" }
func (*hashPasswordCmd) Usage() string {
	return `fintrackctl hash-password < password.txt

  Reads the password from the first line of stdin and prints its bcrypt hash.
`
}

func (*hashPasswordCmd) SetFlags(*flag.FlagSet) {}

func (c *hashPasswordCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	in, out := c.in, c.out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return fail(err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return fail(fmt.Errorf("empty password"))
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(out, hash)
	return subcommands.ExitSuccess
}
