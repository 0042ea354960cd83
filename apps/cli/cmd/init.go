package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new hitcall project",
	Long: `Initialize a new hitcall project in the current directory.

This creates:
  - hitcall.yaml         - Configuration file with call defaults
  - example.calls.yaml   - Example suite

Examples:
  hitcall init
  hitcall init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleSuite = `name: example
calls:
  - name: create resource
    request:
      method: POST
      path: /resources
      params:
        name: Test Resource
        run: "{{$run_id}}"
    response:
      status: [200, 201]
      save:
        resource.id: body.id
      body:
        schema:
          type: object
          required: [id]

  - name: get resource
    request:
      path: /resources/{{resource.id}}
    response:
      status: 200
      body:
        equal:
          name: Test Resource
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, "hitcall.yaml")
	exampleFile := filepath.Join(cwd, "example.calls.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	configContent := map[string]any{
		"timeout":         30000,
		"followRedirects": true,
		"maxRedirects":    10,
		"validateSSL":     true,
		"headers": map[string]string{
			"User-Agent": "hitcall/1.0",
		},
		"defaults": map[string]any{
			"api_call": map[string]any{
				"request": map[string]any{
					"method":   "GET",
					"base_url": "http://localhost:3000",
					"headers": []map[string]string{
						{"Accept": "application/json"},
					},
				},
			},
		},
	}

	configYAML, err := yaml.Marshal(configContent)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configFile, configYAML, 0644); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(exampleFile, []byte(exampleSuite), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhitcall project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'hitcall run example.calls.yaml' to execute the example suite.\n")

	return nil
}
