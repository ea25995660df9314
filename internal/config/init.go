package config

import (
	"fmt"
	"os"
)

const starterConfig = `site:
  name: My Site
  url: https://example.com

source: .
target: site

ignore:
  - drafts

serve:
  port: 4000

deploy:
  remote: git@example.com:me/site.git
  branch: deploy
`

// Init writes a starter configuration file. Refuses to overwrite an existing
// file unless force is set.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write configuration %s: %w", path, err)
	}
	return nil
}
