// Package locale holds the translated user-visible strings of the console.
package locale

import (
	"embed"
	"io/fs"
	"strings"
	"sync"

	"github.com/shyamgroup/backoffice/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

//go:embed translation/*
var i18nFS embed.FS

const DefaultLanguage = "en-US"

var (
	initOnce     sync.Once
	initErr      error
	i18nBundle   *i18n.Bundle
	LocalizerWeb *i18n.Localizer
)

// InitLocalizer parses the embedded translation files. It is safe to call
// more than once; later calls return the first result.
func InitLocalizer() error {
	initOnce.Do(func() {
		i18nBundle = i18n.NewBundle(language.MustParse(DefaultLanguage))
		i18nBundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
		if err := parseTranslationFiles(i18nFS, i18nBundle); err != nil {
			initErr = err
			return
		}
		LocalizerWeb = i18n.NewLocalizer(i18nBundle, DefaultLanguage)
	})
	return initErr
}

func createTemplateData(params []string, seperator ...string) map[string]any {
	var sep string = "=="
	if len(seperator) > 0 {
		sep = seperator[0]
	}

	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) != 2 {
			continue
		}
		templateData[parts[0]] = parts[1]
	}

	return templateData
}

// I18n localizes key with the default localizer. Params are "name==value" pairs.
func I18n(key string, params ...string) string {
	if err := InitLocalizer(); err != nil {
		logger.Errorf("i18n init failed: %v", err)
		return key
	}
	return localize(LocalizerWeb, key, params...)
}

func localize(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		return key
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Errorf("Failed to localize message: %v", err)
		return key
	}
	return msg
}

// LocalizerMiddleware picks a localizer from the "lang" cookie or the
// Accept-Language header and exposes it to handlers as "I18n".
func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := InitLocalizer(); err != nil {
			logger.Warning("i18n init failed:", err)
			c.Next()
			return
		}
		var lang string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		} else {
			lang = c.GetHeader("Accept-Language")
		}

		localizer := i18n.NewLocalizer(i18nBundle, lang, DefaultLanguage)
		c.Set("localizer", localizer)
		c.Set("I18n", func(key string, params ...string) string {
			return localize(localizer, key, params...)
		})
		c.Next()
	}
}

func parseTranslationFiles(i18nFS embed.FS, i18nBundle *i18n.Bundle) error {
	return fs.WalkDir(i18nFS, "translation",
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			data, err := i18nFS.ReadFile(path)
			if err != nil {
				return err
			}
			_, err = i18nBundle.ParseMessageFileBytes(data, path)
			return err
		})
}
