package main

import (
	"errors"
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// YAML is a kong.ConfigurationLoader reading flag defaults from a YAML
// mapping. Keys are flag names, with dashes or underscores:
//
//	feed_url: https://help.example.com/feed.jsonl
//	ttl: 5m
//	noise_line:
//	  - Skip to main content
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	var f kong.ResolverFunc = func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		for _, key := range []string{flag.Name, strings.ReplaceAll(flag.Name, "-", "_")} {
			if v, ok := values[key]; ok {
				return v, nil
			}
		}
		return nil, nil
	}
	return f, nil
}
