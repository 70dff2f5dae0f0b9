package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newLoginCmd(e *env) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the access token",
		Long:  "Sign in with a username and password. Without --password the password is read from the first line of standard input.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				p, err := readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
				password = p
			}

			if err := e.session.Login(cmd.Context(), e.client, username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", e.session.Username())
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := e.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if !e.session.Authenticated() {
				fmt.Fprintln(out, "not logged in")
				return nil
			}

			fmt.Fprintf(out, "user: %s\n", e.session.Username())
			if sub := e.session.Subject(); sub != "" {
				fmt.Fprintf(out, "subject: %s\n", sub)
			}
			if exp := e.session.ExpiresAt(); !exp.IsZero() {
				fmt.Fprintf(out, "expires: %s\n", exp.Local().Format(time.RFC1123))
			}
			fmt.Fprintf(out, "backend: %s\n", e.client.BaseURL())
			return nil
		},
	}
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
