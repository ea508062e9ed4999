package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
)

type templateContext struct {
	ENV map[string]string
}

var missingKeyRegex = regexp.MustCompile(`map has no entry for key "(.*?)"`)

// ExpandEnv replaces {{ .ENV.VAR }} placeholders in a config file with values
// from the environment or a .env file in the working directory.
func ExpandEnv(input []byte) ([]byte, error) {
	if !bytes.Contains(input, []byte("{{")) {
		return input, nil
	}
	if cwd, err := os.Getwd(); err == nil {
		_ = godotenv.Load(filepath.Join(cwd, ".env")) // no error if .env doesn't exist
	}

	env := map[string]string{}
	for _, e := range os.Environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			env[k] = v
		}
	}

	tmpl, err := template.New("config").Option("missingkey=error").Parse(string(input))
	if err != nil {
		return nil, fmt.Errorf("template error: %w", err)
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, templateContext{ENV: env}); err != nil {
		if m := missingKeyRegex.FindStringSubmatch(err.Error()); len(m) == 2 {
			return nil, fmt.Errorf("missing environment variable: %s (set it in your shell or .env file)", m[1])
		}
		return nil, fmt.Errorf("template error: %w", err)
	}
	return out.Bytes(), nil
}
