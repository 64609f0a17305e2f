package main

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"wrapstudio/internal/catalog"
	"wrapstudio/internal/domain"
)

type catalogDocument struct {
	Models           []domain.TrailerModel `yaml:"models"`
	Themes           []domain.ColorTheme   `yaml:"themes"`
	FallbackImageURL string                `yaml:"fallback_image_url"`
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the trailer models and color themes as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(catalogDocument{
				Models:           catalog.Models(),
				Themes:           catalog.Themes(),
				FallbackImageURL: catalog.FallbackImageURL,
			}); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
