package client

import (
	"bufio"
	"crypto/rsa"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/coldvault/vault/pkg/envelope"
)

// REPL drives the interactive CLI: login, create, push, pull, list,
// rotate, exit|quit|q. Each command reconfigures or uses the underlying
// Client; account switches (login/create) rebuild it, since Client is
// keyed to one account's secret and signing key.
type REPL struct {
	baseURL     string
	keyProvider func(accountName string) envelope.KeyProvider
	signingKey  *rsa.PrivateKey

	out         io.Writer
	client      *Client
	accountName string
}

// NewREPL builds a REPL targeting baseURL. keyProviderFor selects the key
// derivation policy per account (e.g. always ZeroPadKeyProvider{}, or
// NewArgon2idKeyProvider(name)); signingKey is shared across accounts for
// simplicity, since one client process acts as a single keypair holder.
func NewREPL(baseURL string, keyProviderFor func(accountName string) envelope.KeyProvider, signingKey *rsa.PrivateKey, out io.Writer) *REPL {
	return &REPL{baseURL: baseURL, keyProvider: keyProviderFor, signingKey: signingKey, out: out}
}

// Run reads commands from in until exit/quit/q or EOF.
func (r *REPL) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd := fields[0]

		switch cmd {
		case "exit", "quit", "q":
			return nil
		case "login":
			r.dispatch(fields, 2, r.cmdLogin)
		case "create":
			r.dispatch(fields, 2, r.cmdCreate)
		case "push":
			r.dispatch(fields, 1, r.cmdPush)
		case "pull":
			r.dispatch(fields, 1, r.cmdPull)
		case "list":
			r.cmdList()
		case "rotate":
			r.cmdRotate()
		default:
			fmt.Fprintf(r.out, "unknown command: %s\n", cmd)
		}
	}
	return scanner.Err()
}

func (r *REPL) dispatch(fields []string, wantArgs int, fn func(args []string)) {
	args := fields[1:]
	if len(args) != wantArgs {
		fmt.Fprintf(r.out, "%s: expected %d argument(s)\n", fields[0], wantArgs)
		return
	}
	fn(args)
}

func (r *REPL) cmdCreate(args []string) {
	name, password := args[0], args[1]
	r.client = New(r.baseURL, name, password, r.keyProvider(name), r.signingKey)
	r.accountName = name
	if err := r.client.Create(); err != nil {
		fmt.Fprintf(r.out, "create failed: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, "ok")
}

func (r *REPL) cmdLogin(args []string) {
	name, password := args[0], args[1]
	r.client = New(r.baseURL, name, password, r.keyProvider(name), r.signingKey)
	r.accountName = name
	if err := r.client.Login(); err != nil {
		fmt.Fprintf(r.out, "login failed: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, "ok")
}

func (r *REPL) cmdPush(args []string) {
	if !r.requireLogin() {
		return
	}
	path := args[0]
	body, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(r.out, "push failed: %v\n", err)
		return
	}
	if err := r.client.Push(path, body); err != nil {
		fmt.Fprintf(r.out, "push failed: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, "ok")
}

func (r *REPL) cmdPull(args []string) {
	if !r.requireLogin() {
		return
	}
	body, err := r.client.Pull(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "pull failed: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "%s\n", body)
}

func (r *REPL) cmdList() {
	if !r.requireLogin() {
		return
	}
	topHash, entries, err := r.client.List()
	if err != nil {
		fmt.Fprintf(r.out, "list failed: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "top_hash=%x\n", topHash)
	for _, e := range entries {
		fmt.Fprintf(r.out, "  %s size=%d\n", e.NameHash, e.Size)
	}
}

// cmdRotate migrates every file on the account from its current key
// derivation policy to Argon2idKeyProvider, the recommended replacement
// for the weak zero-pad default.
func (r *REPL) cmdRotate() {
	if !r.requireLogin() {
		return
	}
	n, err := r.client.RotateKeyProvider(envelope.NewArgon2idKeyProvider(r.accountName))
	if err != nil {
		fmt.Fprintf(r.out, "rotate failed after %d file(s): %v\n", n, err)
		return
	}
	fmt.Fprintf(r.out, "rotated %d file(s) to argon2id\n", n)
}

func (r *REPL) requireLogin() bool {
	if r.client == nil {
		fmt.Fprintln(r.out, "not logged in")
		return false
	}
	return true
}
