package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "social-connect",
	Short: "Social network backend: accounts, posts, likes and comments",
	Long: `social-connect serves the social network HTTP API.

Configuration is read from the environment (and a .env file when present).
See "social-connect serve --help".`,
	SilenceUsage: true,
}
