package config

import (
	"reflect"
	"sort"
	"strings"

	"torrentbot/pkg/logx"
)

// SummarizeConfigChange returns (1) a compact list of changed sections,
// (2) safe structured attrs for logging (never includes the storage URL),
// and (3) the template kinds whose source changed.
func SummarizeConfigChange(oldCfg, newCfg *Config) ([]string, []logx.Field, []string) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 3)
	attrs := make([]logx.Field, 0, 12)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		attrs = append(attrs,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}

	oldR, newR := oldCfg.Render, newCfg.Render
	templates := changedTemplates(oldR.Templates, newR.Templates)
	oldR.Templates, newR.Templates = nil, nil
	if !reflect.DeepEqual(oldR, newR) || len(templates) > 0 {
		changed = append(changed, "render")
		attrs = append(attrs,
			logx.String("render.timezone", strings.TrimSpace(newCfg.Render.Timezone)),
			logx.String("render.byte_units", strings.TrimSpace(newCfg.Render.ByteUnits)),
			logx.Bool("render.escape_html", newCfg.Render.EscapeHTML),
			logx.Int("render.page_size", newCfg.Render.PageSize),
			logx.Int("render.template_overrides", len(newCfg.Render.Templates)),
		)
	}

	// Storage (never log url)
	if !reflect.DeepEqual(oldCfg.Storage, newCfg.Storage) {
		changed = append(changed, "storage")
		attrs = append(attrs,
			logx.String("storage.driver", strings.TrimSpace(newCfg.Storage.Driver)),
			logx.Bool("storage.url_set", strings.TrimSpace(newCfg.Storage.URL) != ""),
		)
	}

	return changed, attrs, templates
}

func changedTemplates(oldT, newT map[string]string) []string {
	var out []string
	for k, v := range newT {
		if ov, ok := oldT[k]; !ok || ov != v {
			out = append(out, k)
		}
	}
	for k := range oldT {
		if _, ok := newT[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
