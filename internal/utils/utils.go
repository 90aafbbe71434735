package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochronus/goputiokit/internal/poll"
	"github.com/ochronus/goputiokit/pkg/putio"
)

const configTemplate = `# Optional log level, default "info"
loglevel = "info"

# Optional. Also write logs to this file, rotated at 10MB.
# log_file = "/var/log/goputiokit.log"

[putio]
# Required for everything except get-token. You can generate one using 'goputiokit get-token'
api_key = "{{PUTIO_API_KEY}}"

# Optional API origins. Point them at 'goputiokit serve-fake' to work offline.
base_url = "https://api.put.io/v2"
upload_url = "https://upload.put.io/v2"

# Optional request timeout, default "30s"
timeout = "30s"

# Optional OAuth app id used for out-of-band linking, default "6487"
app_id = "6487"

[fake]
# Settings for 'goputiokit serve-fake'
bind_address = "127.0.0.1"
port = 9095
token = "fake-token"
`

// LinkURL is where users enter an out-of-band code.
const LinkURL = "https://put.io/link"

// GetToken obtains a new put.io API token through OOB authentication. It
// polls until the code is linked, ctx is canceled or attempts run out.
func GetToken(ctx context.Context, client *putio.Client, appID string, out io.Writer, cfg poll.Config) (string, error) {
	fmt.Fprintln(out)

	res := <-client.OOBCode(ctx, appID)
	if res.Err != nil {
		return "", fmt.Errorf("failed to get OOB code: %w", res.Err)
	}
	code := res.Value

	fmt.Fprintf(out, "Go to %s and enter the code: %s\n", LinkURL, code)
	fmt.Fprintln(out, "Waiting for token...")

	var token string
	err := poll.Until(ctx, cfg, func(int) (bool, error) {
		check := <-client.CheckOOB(ctx, code)
		if check.Err != nil {
			// Not linked yet, keep waiting
			return false, &poll.TransientError{Err: check.Err}
		}
		token = check.Value
		return true, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to obtain token: %w", err)
	}

	fmt.Fprintf(out, "Put.io API token: %s\n", token)
	return token, nil
}

// GenerateConfig writes a configuration file carrying token, backing up any
// existing file to configPath + ".bak".
func GenerateConfig(configPath, token string, out io.Writer) error {
	fmt.Fprintf(out, "Generating config %s\n", configPath)

	config := strings.Replace(configTemplate, "{{PUTIO_API_KEY}}", token, 1)

	if _, err := os.Stat(configPath); err == nil {
		backupPath := configPath + ".bak"
		fmt.Fprintf(out, "Backing up config %s\n", configPath)
		if err := os.Rename(configPath, backupPath); err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	fmt.Fprintf(out, "Writing %s\n", configPath)
	if err := os.WriteFile(configPath, []byte(config), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
