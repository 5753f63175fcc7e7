package tasks

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/crypto/ssh"

	"github.com/nomis52/dagrun/dag"
)

// BuildSSH builds a task that runs a command on a remote host over SSH,
// authenticating with a private key (PEM format).
//
// Params:
//
//	host:             host:port of the SSH server (required)
//	user:             remote user (required)
//	private_key_file: path to the private key (required)
//	command:          remote command line (required)
//
// The task's result is the remote command's stdout as a string.
func BuildSSH(params map[string]any) (dag.WorkFn, error) {
	host, err := stringParam(params, "host", true)
	if err != nil {
		return nil, err
	}
	user, err := stringParam(params, "user", true)
	if err != nil {
		return nil, err
	}
	keyFile, err := stringParam(params, "private_key_file", true)
	if err != nil {
		return nil, err
	}
	command, err := stringParam(params, "command", true)
	if err != nil {
		return nil, err
	}

	return func(ctx *dag.RunContext) (any, error) {
		keyPEM, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("reading private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(keyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}

		config := &ssh.ClientConfig{
			User: user,
			Auth: []ssh.AuthMethod{
				ssh.PublicKeys(signer),
			},
			HostKeyCallback: ssh.InsecureIgnoreHostKey(), // NOTE: for production, use a proper callback
		}

		client, err := ssh.Dial("tcp", host, config)
		if err != nil {
			return nil, fmt.Errorf("failed to dial SSH: %w", err)
		}
		defer client.Close()

		session, err := client.NewSession()
		if err != nil {
			return nil, fmt.Errorf("failed to create SSH session: %w", err)
		}
		defer session.Close()

		var stdout, stderr bytes.Buffer
		session.Stdout = &stdout
		session.Stderr = &stderr

		if err := session.Run(command); err != nil {
			return nil, fmt.Errorf("failed to run command: %w: %s", err, stderr.String())
		}
		return stdout.String(), nil
	}, nil
}
