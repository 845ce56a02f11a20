package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
)

// Config holds all configuration
type Config struct {
	Models    []Model    `hcl:"model,block"`
	Variables []Variable `hcl:"variable,block"`
	Jobs      []Job      `hcl:"job,block"`

	Storage  *StorageConfig  `hcl:"storage,block"`
	Progress *ProgressConfig `hcl:"progress,block"`

	// ResolvedVars holds the resolved variable values for runtime use
	ResolvedVars map[string]cty.Value `hcl:"-"`
}

func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadAndValidate loads the config and validates all components
func LoadAndValidate(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all config components are valid
func (c *Config) Validate() error {
	for _, m := range c.Models {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("model '%s': %w", m.Name, err)
		}
	}

	for _, v := range c.Variables {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("variable '%s': %w", v.Name, err)
		}
	}

	if c.Storage != nil {
		if err := c.Storage.Validate(); err != nil {
			return fmt.Errorf("storage: %w", err)
		}
	}

	if c.Progress != nil {
		if err := c.Progress.Validate(); err != nil {
			return fmt.Errorf("progress: %w", err)
		}
	}

	seen := make(map[string]bool)
	for _, j := range c.Jobs {
		if seen[j.Name] {
			return fmt.Errorf("job '%s': defined more than once", j.Name)
		}
		seen[j.Name] = true

		if err := j.Validate(c.Models); err != nil {
			return fmt.Errorf("job '%s': %w", j.Name, err)
		}
	}

	return nil
}

// GetJob returns the job with the given name
func (c *Config) GetJob(name string) (*Job, error) {
	for i := range c.Jobs {
		if c.Jobs[i].Name == name {
			return &c.Jobs[i], nil
		}
	}
	return nil, fmt.Errorf("job '%s' not found", name)
}

func LoadFile(filename string) (*Config, error) {
	return loadFromFiles([]string{filename})
}

func LoadDir(dir string) (*Config, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.hcl"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %s", dir)
	}
	return loadFromFiles(files)
}

// parsedBlocks holds all blocks extracted from a file in one pass
type parsedBlocks struct {
	Variables []*hcl.Block
	Models    []*hcl.Block
	Storage   []*hcl.Block
	Progress  []*hcl.Block
	Jobs      []*hcl.Block
}

// loadFromFiles implements staged loading: variables → models → storage/progress → jobs
func loadFromFiles(files []string) (*Config, error) {
	parser := hclparse.NewParser()
	var allParsedBlocks []parsedBlocks

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parse %s: %w", file, diags)
		}

		content, diags := hclFile.Body.Content(&hcl.BodySchema{
			Blocks: []hcl.BlockHeaderSchema{
				{Type: "variable", LabelNames: []string{"name"}},
				{Type: "model", LabelNames: []string{"name"}},
				{Type: "storage"},
				{Type: "progress"},
				{Type: "job", LabelNames: []string{"name"}},
			},
		})
		if diags.HasErrors() {
			return nil, fmt.Errorf("content %s: %w", file, diags)
		}

		var pb parsedBlocks
		for _, block := range content.Blocks {
			switch block.Type {
			case "variable":
				pb.Variables = append(pb.Variables, block)
			case "model":
				pb.Models = append(pb.Models, block)
			case "storage":
				pb.Storage = append(pb.Storage, block)
			case "progress":
				pb.Progress = append(pb.Progress, block)
			case "job":
				pb.Jobs = append(pb.Jobs, block)
			}
		}
		allParsedBlocks = append(allParsedBlocks, pb)
	}

	// Stage 1: Load variables (no context needed)
	var allVars []Variable
	for _, pb := range allParsedBlocks {
		for _, block := range pb.Variables {
			var v Variable
			v.Name = block.Labels[0]
			diags := gohcl.DecodeBody(block.Body, nil, &v)
			if diags.HasErrors() {
				return nil, fmt.Errorf("decode variable %s: %w", v.Name, diags)
			}
			allVars = append(allVars, v)
		}
	}

	varsCtx, resolvedVars := buildVarsContext(allVars)

	// Stage 2: Load models (with vars context)
	var allModels []Model
	for _, pb := range allParsedBlocks {
		for _, block := range pb.Models {
			var m Model
			m.Name = block.Labels[0]
			diags := gohcl.DecodeBody(block.Body, varsCtx, &m)
			if diags.HasErrors() {
				return nil, fmt.Errorf("decode model %s: %w", m.Name, diags)
			}
			allModels = append(allModels, m)
		}
	}

	modelsCtx := buildModelsContext(varsCtx, allModels)

	// Stage 3: Singleton blocks (with vars context)
	var storage *StorageConfig
	var progress *ProgressConfig
	for _, pb := range allParsedBlocks {
		for _, block := range pb.Storage {
			if storage != nil {
				return nil, fmt.Errorf("%s: only one storage block is allowed", block.DefRange)
			}
			storage = &StorageConfig{}
			if diags := gohcl.DecodeBody(block.Body, varsCtx, storage); diags.HasErrors() {
				return nil, fmt.Errorf("decode storage: %w", diags)
			}
			storage.Defaults()
		}
		for _, block := range pb.Progress {
			if progress != nil {
				return nil, fmt.Errorf("%s: only one progress block is allowed", block.DefRange)
			}
			progress = &ProgressConfig{}
			if diags := gohcl.DecodeBody(block.Body, varsCtx, progress); diags.HasErrors() {
				return nil, fmt.Errorf("decode progress: %w", diags)
			}
		}
	}

	// Stage 4: Load jobs (with vars + models context)
	var allJobs []Job
	for _, pb := range allParsedBlocks {
		for _, block := range pb.Jobs {
			var j Job
			j.Name = block.Labels[0]
			diags := gohcl.DecodeBody(block.Body, modelsCtx, &j)
			if diags.HasErrors() {
				return nil, fmt.Errorf("decode job %s: %w", j.Name, diags)
			}
			j.Defaults()
			allJobs = append(allJobs, j)
		}
	}

	return &Config{
		Variables:    allVars,
		Models:       allModels,
		Jobs:         allJobs,
		Storage:      storage,
		Progress:     progress,
		ResolvedVars: resolvedVars,
	}, nil
}

// buildVarsContext resolves every variable (vars file first, then default)
// and exposes them as vars.<name>
func buildVarsContext(vars []Variable) (*hcl.EvalContext, map[string]cty.Value) {
	varsMap := make(map[string]cty.Value)
	fileVars, _ := LoadVarsFromFile()
	for _, v := range vars {
		if val, ok := fileVars[v.Name]; ok {
			varsMap[v.Name] = cty.StringVal(val)
		} else {
			varsMap[v.Name] = cty.StringVal(v.Default)
		}
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"vars": cty.ObjectVal(varsMap),
		},
	}, varsMap
}

// buildModelsContext adds models.<name>.<model_key> references to an existing context
func buildModelsContext(ctx *hcl.EvalContext, models []Model) *hcl.EvalContext {
	modelsMap := make(map[string]cty.Value)
	for _, m := range models {
		providerModels := make(map[string]cty.Value)
		for _, modelKey := range m.AllowedModels {
			providerModels[modelKey] = cty.StringVal(ModelRef(m.Name, modelKey))
		}
		modelsMap[m.Name] = cty.ObjectVal(providerModels)
	}

	newVars := make(map[string]cty.Value)
	for k, v := range ctx.Variables {
		newVars[k] = v
	}
	newVars["models"] = cty.ObjectVal(modelsMap)

	return &hcl.EvalContext{
		Variables: newVars,
	}
}
