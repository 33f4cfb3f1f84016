package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"marquee/internal/api"
	"marquee/internal/config"
)

type commandContext struct {
	serverFlag *string
	configFlag *string
	userFlag   *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(serverFlag, configFlag, userFlag *string) *commandContext {
	return &commandContext{
		serverFlag: serverFlag,
		configFlag: configFlag,
		userFlag:   userFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// loadConfig performs a fresh load, also reporting where the file was
// resolved and whether it existed. Used by the config subcommands.
func (c *commandContext) loadConfig() (*config.Config, string, bool, error) {
	var path string
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	return config.Load(path)
}

// user resolves the requester identity: the --user flag when set, otherwise
// the invoking OS user.
func (c *commandContext) user() (string, error) {
	if c.userFlag != nil {
		if name := strings.TrimSpace(*c.userFlag); name != "" {
			return name, nil
		}
	}
	if name := strings.TrimSpace(os.Getenv("USER")); name != "" {
		return name, nil
	}
	return "", errors.New("cannot determine requester; pass --user")
}

// serverURL resolves the daemon address: the --server flag when set,
// otherwise the configured API bind address.
func (c *commandContext) serverURL() (string, string, error) {
	if c.serverFlag != nil {
		if server := strings.TrimSpace(*c.serverFlag); server != "" {
			return normalizeServerURL(server), "", nil
		}
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", "", err
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return "", "", errors.New("no daemon address configured; set paths.api_bind or pass --server")
	}
	return normalizeServerURL(bind), cfg.Paths.APIToken, nil
}

func normalizeServerURL(addr string) string {
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "http://" + addr
}

func (c *commandContext) withClient(fn func(*api.Client) error) error {
	base, token, err := c.serverURL()
	if err != nil {
		return err
	}
	if err := fn(api.NewClient(base, token)); err != nil {
		return wrapClientError(err, base)
	}
	return nil
}

func wrapClientError(err error, base string) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "connection refused") {
		return fmt.Errorf("connect to daemon at %s: is marqueed running?", base)
	}
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
