package page

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"sigs.k8s.io/yaml"

	"openportal.dev/openportal/descriptor"
)

const (
	OutputTable = "table"
	OutputYAML  = "yaml"
	OutputJSON  = "json"
	OutputTree  = "tree"
)

func encodeConfigs(output string, configs []*descriptor.PageConfig) ([]byte, error) {
	var data []byte
	var err error
	switch output {
	case OutputJSON:
		data, err = encodeConfigsAsJSON(configs)
	case OutputYAML:
		data, err = encodeConfigsAsYAML(configs)
	case OutputTree:
		data, err = encodeConfigsAsTree(configs)
	case OutputTable:
		data, err = encodeConfigsAsTable(configs)
	default:
		err = fmt.Errorf("unknown output format: %q", output)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding page configuration as %q failed: %w", output, err)
	}
	return data, nil
}

// Multiple configurations encode as NDJSON, one object per line.
func encodeConfigsAsJSON(configs []*descriptor.PageConfig) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for _, config := range configs {
		if err := encoder.Encode(config); err != nil {
			return nil, fmt.Errorf("encoding page configuration failed: %w", err)
		}
	}
	return buf.Bytes(), nil
}

func encodeConfigsAsYAML(configs []*descriptor.PageConfig) ([]byte, error) {
	if len(configs) == 1 {
		return yaml.Marshal(configs[0])
	}
	return yaml.Marshal(configs)
}

func encodeConfigsAsTable(configs []*descriptor.PageConfig) ([]byte, error) {
	var buf bytes.Buffer
	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.AppendHeader(table.Row{"Page", "Version", "Widgets"})
	for _, config := range configs {
		t.AppendRow(table.Row{config.ID, config.Version, config.WidgetCount()})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return buf.Bytes(), nil
}

func encodeConfigsAsTree(configs []*descriptor.PageConfig) ([]byte, error) {
	var buf bytes.Buffer
	for _, config := range configs {
		lw := list.NewWriter()
		lw.SetOutputMirror(&buf)
		lw.SetStyle(list.StyleConnectedRounded)
		lw.AppendItem(fmt.Sprintf("%s (version %s)", config.ID, config.Version))
		lw.Indent()
		for i := range config.Widgets {
			appendWidget(lw, &config.Widgets[i])
		}
		lw.UnIndent()
		lw.Render()
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

func appendWidget(lw list.Writer, widget *descriptor.Widget) {
	lw.AppendItem(fmt.Sprintf("%s (%s)", widget.ID, widget.Type))
	if len(widget.Children) == 0 {
		return
	}
	lw.Indent()
	for i := range widget.Children {
		appendWidget(lw, &widget.Children[i])
	}
	lw.UnIndent()
}
