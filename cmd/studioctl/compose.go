package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"wrapstudio/internal/catalog"
	"wrapstudio/internal/domain"
	"wrapstudio/internal/prompt"
)

func newComposeCmd() *cobra.Command {
	var (
		modelID, themeID string
		branding         domain.BrandingDetails
		hasLogo          bool
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Print the generation prompt for a selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := prompt.Input{Branding: branding, HasLogo: hasLogo}
			if modelID != "" {
				model, err := catalog.ModelByID(modelID)
				if err != nil {
					return err
				}
				in.Model = &model
			}
			if themeID != "" {
				theme, err := catalog.ThemeByID(themeID)
				if err != nil {
					return err
				}
				in.Theme = &theme
			}
			text, err := prompt.Compose(in)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&modelID, "model", "", "trailer model id")
	f.StringVar(&themeID, "theme", "", "color theme id")
	f.StringVar(&branding.Slogan, "slogan", "", "slogan text")
	f.StringVar(&branding.Website, "website", "", "website text")
	f.StringVar(&branding.Phone, "phone", "", "phone text")
	f.BoolVar(&hasLogo, "logo", false, "include the logo placement clause")
	return cmd
}
