// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL.
// Expressions can read environment variables through env and the home directory through home.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Define HCL schema
	type hclConfig struct {
		Storage         *string  `hcl:"storage,optional"`
		Concurrency     *int     `hcl:"concurrency,optional"`
		Exclude         []string `hcl:"exclude,optional"`
		PreserveLastDir *bool    `hcl:"preserve_last_dir,optional"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalContext(), &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	cfg := Default()
	if hclCfg.Storage != nil {
		cfg.Storage = *hclCfg.Storage
	}
	if hclCfg.Concurrency != nil {
		cfg.Concurrency = *hclCfg.Concurrency
	}
	if hclCfg.PreserveLastDir != nil {
		cfg.PreserveLastDir = *hclCfg.PreserveLastDir
	}
	cfg.Exclude = hclCfg.Exclude

	return cfg, nil
}

// evalContext exposes env.<NAME> and home to config expressions
func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		env[name] = cty.StringVal(value)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":  cty.ObjectVal(env),
			"home": cty.StringVal(home),
		},
	}
}
