package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"user-accounts/internal/openapi"
)

func newOpenAPICmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI document for the accounts API",
		Example: `  accounts openapi
  accounts openapi -o openapi.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("create %s: %w", outputFile, err)
				}
				defer f.Close()
				out = f
			}
			return writeOpenAPI(out)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the document to a file instead of stdout")

	return cmd
}

func writeOpenAPI(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(openapi.Document(appVersion))
}
