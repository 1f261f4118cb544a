package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator resolves localized strings for one language, plus the
// language's policy (disclaimer) text shown before login.
type Translator struct {
	lang         string
	translations map[string]string
	policyText   string
}

func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := filepath.Join("locales", fmt.Sprintf("%s.yaml", langCode))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}

	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}

	policyPath := filepath.Join("locales", fmt.Sprintf("policy-%s.txt", langCode))
	policyBytes, err := fs.ReadFile(fsys, policyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %s: %w", policyPath, err)
	}

	return &Translator{
		lang:         langCode,
		translations: translations,
		policyText:   string(policyBytes),
	}, nil
}

// T returns the localized string for key, formatted with args.
// Unknown keys fall through to the key itself.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

func (t *Translator) Policy() string { return t.policyText }

func (t *Translator) Lang() string { return t.lang }
