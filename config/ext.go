package config

import (
	"fmt"
	"os"
	"sync"

	"gdl/models"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var (
	tree   = make(map[string]any)
	treeMu sync.RWMutex
)

// LoadFile merges the yaml document at path into the config tree.
// A missing file is not an error.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed reading config file: %w", err)
	}
	return LoadBytes(data)
}

func LoadBytes(data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed parsing config file: %w", err)
	}
	treeMu.Lock()
	defer treeMu.Unlock()
	merge(tree, doc)
	return nil
}

// Get returns the value of key below path, or def.
func Get(path []string, key string, def any) any {
	treeMu.RLock()
	defer treeMu.RUnlock()

	conf := tree
	for _, p := range path {
		next, ok := conf[p].(map[string]any)
		if !ok {
			return def
		}
		conf = next
	}
	if value, ok := conf[key]; ok {
		return value
	}
	return def
}

// Interpolate returns the value of key at the deepest level of path
// that defines it, checking the root first.
func Interpolate(path []string, key string, def any) any {
	treeMu.RLock()
	defer treeMu.RUnlock()

	value, _ := interpolate(path, key, def)
	return value
}

func interpolate(path []string, key string, def any) (any, bool) {
	conf := tree
	found := false
	if value, ok := conf[key]; ok {
		def, found = value, true
	}
	for _, p := range path {
		next, ok := conf[p].(map[string]any)
		if !ok {
			break
		}
		conf = next
		if value, ok := conf[key]; ok {
			def, found = value, true
		}
	}
	return def, found
}

// Set stores value under path/key, creating intermediate levels.
func Set(path []string, key string, value any) {
	treeMu.Lock()
	defer treeMu.Unlock()

	conf := tree
	for _, p := range path {
		next, ok := conf[p].(map[string]any)
		if !ok {
			next = make(map[string]any)
			conf[p] = next
		}
		conf = next
	}
	conf[key] = value
}

func Clear() {
	treeMu.Lock()
	defer treeMu.Unlock()
	tree = make(map[string]any)
}

// ExtractorOptions resolves keys for one extractor, from
// extractor.<category>.<subcategory> up to the root.
type ExtractorOptions struct {
	path []string
}

func ForExtractor(category, subcategory string) *ExtractorOptions {
	path := []string{"extractor", category}
	if subcategory != "" {
		path = append(path, subcategory)
	}
	return &ExtractorOptions{path: path}
}

func (opts *ExtractorOptions) Lookup(key string) (any, bool) {
	treeMu.RLock()
	defer treeMu.RUnlock()
	return interpolate(opts.path, key, nil)
}

// GetExtractorConfig decodes the typed settings for extractor.
// Unset proxies fall back to the environment.
func GetExtractorConfig(extractor *models.Extractor) *models.ExtractorConfig {
	opts := ForExtractor(extractor.Category, extractor.Subcategory)
	merged := make(map[string]any)
	for _, key := range []string{
		"http_proxy", "https_proxy", "no_proxy", "edge_proxy_url",
		"cookies", "user-agent", "retries", "timeout",
		"sleep-request", "disabled",
	} {
		if value, ok := opts.Lookup(key); ok {
			merged[key] = value
		}
	}
	cfg := &models.ExtractorConfig{Retries: 4}
	data, err := yaml.Marshal(merged)
	if err == nil {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		// fields that did decode are kept
		zap.S().Warnf("invalid options for extractor %s: %v", extractor.Category, err)
	}
	if cfg.HTTPProxy == "" {
		cfg.HTTPProxy = Env.HTTPProxy
	}
	if cfg.HTTPSProxy == "" {
		cfg.HTTPSProxy = Env.HTTPSProxy
	}
	if cfg.NoProxy == "" {
		cfg.NoProxy = Env.NoProxy
	}
	return cfg
}

func merge(dst, src map[string]any) {
	for key, value := range src {
		srcMap, ok := value.(map[string]any)
		if !ok {
			dst[key] = value
			continue
		}
		dstMap, ok := dst[key].(map[string]any)
		if !ok {
			dstMap = make(map[string]any)
			dst[key] = dstMap
		}
		merge(dstMap, srcMap)
	}
}
