package assets

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// baseSettingsSchema is the universal per-page settings fragment every layout
// inherits. Layout schemas extend it with their own properties.
const baseSettingsSchema = `{
  "type": "object",
  "properties": {
    "cssClass": {
      "type": "string",
      "title": "Extra CSS class"
    },
    "hideFromNavigation": {
      "type": "boolean",
      "title": "Hide from navigation",
      "default": false
    }
  }
}`

// reservedSettingsFields are handled by dedicated editor UI, never by the
// generic settings form, so layout schemas may not redeclare them.
var reservedSettingsFields = []string{"title", "description", "slug"}

// MergedLayoutManifest returns the layout's manifest with its settings schema
// merged over the universal base schema. Layout-declared reserved fields are
// removed. The merged schema is checked to still compile as a JSON schema;
// a schema that no longer compiles falls back to the base fragment.
func (r *Resolver) MergedLayoutManifest(layoutID string) (*Manifest, error) {
	manifest := r.Manifest(KindLayout, layoutID)
	if manifest == nil {
		return nil, fmt.Errorf("assets: layout %q not found", layoutID)
	}

	merged, err := mergeSettingsSchemas([]byte(baseSettingsSchema), manifest.Settings)
	if err != nil {
		r.logger.Warn("assets.schema.merge_failed", "layout", layoutID, "error", err)
		merged = json.RawMessage(baseSettingsSchema)
	}

	out := *manifest
	out.Files = append([]FileRef(nil), manifest.Files...)
	out.Settings = merged
	return &out, nil
}

func mergeSettingsSchemas(base, overlay json.RawMessage) (json.RawMessage, error) {
	var root map[string]any
	if err := json.Unmarshal(base, &root); err != nil {
		return nil, fmt.Errorf("assets: base schema: %w", err)
	}

	if len(overlay) > 0 {
		var layout map[string]any
		if err := json.Unmarshal(overlay, &layout); err != nil {
			return nil, fmt.Errorf("assets: layout schema: %w", err)
		}
		baseProps, _ := root["properties"].(map[string]any)
		if baseProps == nil {
			baseProps = map[string]any{}
		}
		if layoutProps, ok := layout["properties"].(map[string]any); ok {
			for name, prop := range layoutProps {
				baseProps[name] = prop
			}
		}
		for key, value := range layout {
			if key == "properties" {
				continue
			}
			root[key] = value
		}
		root["properties"] = baseProps
	}

	if props, ok := root["properties"].(map[string]any); ok {
		for _, reserved := range reservedSettingsFields {
			delete(props, reserved)
		}
	}
	if required, ok := root["required"].([]any); ok {
		kept := make([]any, 0, len(required))
		for _, entry := range required {
			name, _ := entry.(string)
			if !isReservedSettingsField(name) {
				kept = append(kept, entry)
			}
		}
		if len(kept) == 0 {
			delete(root, "required")
		} else {
			root["required"] = kept
		}
	}

	merged, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	if err := compileSchema(merged); err != nil {
		return nil, fmt.Errorf("assets: merged schema does not compile: %w", err)
	}
	return merged, nil
}

func isReservedSettingsField(name string) bool {
	for _, reserved := range reservedSettingsFields {
		if name == reserved {
			return true
		}
	}
	return false
}

func compileSchema(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("settings.json", bytes.NewReader(data)); err != nil {
		return err
	}
	_, err := compiler.Compile("settings.json")
	return err
}
