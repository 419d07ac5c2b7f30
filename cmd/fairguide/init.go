package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/fairguide/internal/config"
	"github.com/jonathan/fairguide/internal/crm"
)

var (
	initSOAPURL      string
	initSOAPUser     string
	initSOAPPassword string
	initMediaURL     string
	initStorageDir   string
	initForce        bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file",
	Long: "Writes a config file with the CRM connection and storage settings. " +
		"The SOAP password is stored as the md5 digest the CRM expects.",
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initSOAPURL, "soap-url", "", "SugarCRM soap.php endpoint")
	initCmd.Flags().StringVar(&initSOAPUser, "soap-user", "", "SugarCRM user name")
	initCmd.Flags().StringVar(&initSOAPPassword, "soap-password", "", "SugarCRM password (stored hashed)")
	initCmd.Flags().StringVar(&initMediaURL, "media-url", "", "Base URL of the logo and advertisement host")
	initCmd.Flags().StringVar(&initStorageDir, "storage-dir", "", "Directory for cached assets")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")

	_ = initCmd.MarkFlagRequired("soap-url")
	_ = initCmd.MarkFlagRequired("soap-user")
	_ = initCmd.MarkFlagRequired("soap-password")
	_ = initCmd.MarkFlagRequired("media-url")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath
	}

	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	cfg := config.Defaults()
	cfg.CRM.URL = initSOAPURL
	cfg.CRM.User = initSOAPUser
	cfg.CRM.PasswordHash = crm.HashPassword(initSOAPPassword)
	cfg.Assets.BaseURL = initMediaURL
	if initStorageDir != "" {
		cfg.StorageDir = initStorageDir
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
