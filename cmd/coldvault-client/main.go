// Command coldvault-client is the interactive and batch client for
// pushing, pulling, and listing files in a coldvault server.
package main

import (
	"context"
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/coldvault/vault/internal/client"
	"github.com/coldvault/vault/pkg/envelope"
)

func main() {
	cmd := &cli.Command{
		Name:  "coldvault-client",
		Usage: "encrypted file vault client",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Value: "http://localhost:8000", Usage: "server base URL"},
			&cli.StringFlag{Name: "account", Usage: "account name"},
			&cli.StringFlag{Name: "password", Usage: "account password"},
			&cli.StringFlag{Name: "keyfile", Usage: "PKCS8 RSA signing key (PEM); generated in memory if unset"},
			&cli.BoolFlag{Name: "argon2", Usage: "derive the symmetric key with Argon2id instead of the zero-pad default"},
		},
		Commands: []*cli.Command{
			cmdRepl(),
			cmdPush(),
			cmdPull(),
			cmdList(),
			cmdCreate(),
			cmdLogin(),
			cmdRotateKey(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return cmdRepl().Action(ctx, c)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "coldvault-client:", err)
		os.Exit(1)
	}
}

func signingKeyFor(c *cli.Command) (*rsa.PrivateKey, error) {
	path := c.String("keyfile")
	if path == "" {
		return envelope.GenerateKeyPair()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keyfile: %w", err)
	}
	return envelope.ParsePrivateKeyPKCS8(data)
}

func keyProviderFor(c *cli.Command) func(accountName string) envelope.KeyProvider {
	if c.Bool("argon2") {
		return func(accountName string) envelope.KeyProvider {
			return envelope.NewArgon2idKeyProvider(accountName)
		}
	}
	return func(string) envelope.KeyProvider { return envelope.ZeroPadKeyProvider{} }
}

func newClient(c *cli.Command) (*client.Client, error) {
	account := c.String("account")
	password := c.String("password")
	if account == "" || password == "" {
		return nil, fmt.Errorf("--account and --password are required")
	}
	signingKey, err := signingKeyFor(c)
	if err != nil {
		return nil, err
	}
	return client.New(c.String("addr"), account, password, keyProviderFor(c)(account), signingKey), nil
}

func cmdRepl() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "start the interactive session",
		Action: func(ctx context.Context, c *cli.Command) error {
			signingKey, err := signingKeyFor(c)
			if err != nil {
				return err
			}
			repl := client.NewREPL(c.String("addr"), keyProviderFor(c), signingKey, os.Stdout)
			return repl.Run(os.Stdin)
		},
	}
}

func cmdCreate() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "create an account",
		Action: func(ctx context.Context, c *cli.Command) error {
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			return cl.Create()
		},
	}
}

func cmdLogin() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "authenticate an account",
		Action: func(ctx context.Context, c *cli.Command) error {
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			return cl.Login()
		},
	}
}

func cmdPush() *cli.Command {
	return &cli.Command{
		Name:      "push",
		Usage:     "encrypt and upload one or more files",
		ArgsUsage: "<path> [path...]",
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return fmt.Errorf("push requires at least one file path")
			}
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			results := cl.PushAll(ctx, paths, client.DefaultBatchConfig())
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(os.Stderr, "push %s: %v\n", r.Path, r.Err)
					continue
				}
				fmt.Printf("push %s: ok\n", r.Path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d pushes failed", failed, len(results))
			}
			return nil
		},
	}
}

func cmdPull() *cli.Command {
	return &cli.Command{
		Name:      "pull",
		Usage:     "download and decrypt a file by plaintext name",
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return fmt.Errorf("pull requires exactly one file name")
			}
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			body, err := cl.Pull(c.Args().First())
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(body)
			return err
		},
	}
}

func cmdRotateKey() *cli.Command {
	return &cli.Command{
		Name:  "rotate-key",
		Usage: "re-seal every stored file under Argon2id, migrating off the zero-pad key derivation",
		Action: func(ctx context.Context, c *cli.Command) error {
			account := c.String("account")
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			n, err := cl.RotateKeyProvider(envelope.NewArgon2idKeyProvider(account))
			if err != nil {
				return fmt.Errorf("rotated %d file(s) before failing: %w", n, err)
			}
			fmt.Printf("rotated %d file(s) to argon2id\n", n)
			return nil
		},
	}
}

func cmdList() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list stored files and the current top hash",
		Action: func(ctx context.Context, c *cli.Command) error {
			cl, err := newClient(c)
			if err != nil {
				return err
			}
			topHash, entries, err := cl.List()
			if err != nil {
				return err
			}
			fmt.Printf("top_hash=%x\n", topHash)
			for _, e := range entries {
				fmt.Printf("  %s size=%d\n", e.NameHash, e.Size)
			}
			return nil
		},
	}
}
