package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/micro-ha/device-inventory/internal/config"
)

type configView struct {
	Source  string `json:"source" yaml:"source"`
	MongoDB struct {
		URI        string `json:"uri" yaml:"uri"`
		Database   string `json:"database" yaml:"database"`
		Collection string `json:"collection" yaml:"collection"`
	} `json:"mongodb" yaml:"mongodb"`
	Port               int      `json:"port" yaml:"port"`
	LogLevel           string   `json:"log_level" yaml:"log_level"`
	LogFormat          string   `json:"log_format" yaml:"log_format"`
	AuditDBPath        string   `json:"audit_db_path" yaml:"audit_db_path"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins"`
	RequestTimeout     string   `json:"request_timeout" yaml:"request_timeout"`
}

func newConfigView(cfg config.Config) configView {
	var view configView
	view.Source = cfg.Source
	view.MongoDB.URI = cfg.Mongo.RedactedURI()
	view.MongoDB.Database = cfg.Mongo.Database
	view.MongoDB.Collection = cfg.Mongo.Collection
	view.Port = cfg.Port
	view.LogLevel = strings.ToLower(cfg.LogLevel.String())
	view.LogFormat = cfg.LogFormat
	view.AuditDBPath = cfg.AuditDBPath
	view.CORSAllowedOrigins = cfg.CORSAllowedOrigins
	view.RequestTimeout = cfg.RequestTimeout.String()
	return view
}

func NewConfigCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Resolve configuration and print it with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Resolve()
			if err != nil {
				return err
			}
			return printConfig(cmd.OutOrStdout(), newConfigView(cfg), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	return cmd
}

func printConfig(w io.Writer, view configView, output string) error {
	switch output {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	default:
		return fmt.Errorf("unsupported output format %q", output)
	}
}
