package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/kdduha/sportsclass/internal/models"
	"github.com/kdduha/sportsclass/internal/source"
	"github.com/spf13/cobra"
)

var (
	filePath string
	imageURL string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify one image from a file or a URL",
	Example: `  sportsclass classify --file match.jpg
  sportsclass classify --url https://example.com/match.jpg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := sourceFromFlags()
		if err != nil {
			return err
		}

		svc, closeCache, err := newClassifyService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeCache()

		res, err := svc.Classify(cmd.Context(), src)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), models.Label(res.Class))
		return nil
	},
}

func sourceFromFlags() (source.Source, error) {
	switch {
	case filePath != "" && imageURL != "":
		return source.Source{}, errors.New("--file and --url are mutually exclusive")
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return source.Source{}, fmt.Errorf("failed to read image: %w", err)
		}
		return source.FromFile(filePath, data), nil
	case imageURL != "":
		return source.FromURL(imageURL), nil
	}
	return source.Source{}, models.ErrNoImage
}

func init() {
	classifyCmd.Flags().StringVarP(&filePath, "file", "f", "", "path to a local image")
	classifyCmd.Flags().StringVarP(&imageURL, "url", "u", "", "image URL")
}
