package projects

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

func validOutputType(t OutputType) bool {
	switch t {
	case OutputDocument, OutputDataset, OutputCode, OutputTools, OutputLog, OutputOthers, OutputVideo:
		return true
	}
	return false
}

// normalizeData keeps only the fields meaningful for the output type
func normalizeData(t OutputType, in OutputData) (OutputData, error) {
	switch t {
	case OutputDocument, OutputDataset:
		return OutputData{URL: in.URL, IPFSCID: in.IPFSCID, FileName: in.FileName}, nil
	case OutputCode, OutputVideo:
		return OutputData{URL: in.URL}, nil
	case OutputLog:
		return OutputData{URL: in.URL, FileName: in.FileName}, nil
	case OutputOthers:
		return OutputData{URL: in.URL, IPFSCID: in.IPFSCID, FileName: in.FileName, OtherText: in.OtherText}, nil
	case OutputTools:
		var tools []Tool
		for _, tool := range in.Tools {
			if !slices.Contains(ToolOptions, tool) {
				return OutputData{}, fmt.Errorf("%w: unknown tool %q", ErrValidation, tool)
			}
			if !slices.Contains(tools, tool) {
				tools = append(tools, tool)
			}
		}
		if len(tools) == 0 {
			return OutputData{}, fmt.Errorf("%w: at least one tool is required", ErrValidation)
		}
		return OutputData{Tools: tools}, nil
	}
	return OutputData{}, fmt.Errorf("%w: unknown output type %q", ErrValidation, t)
}

// normalizeEvidence applies the narrower evidence rules; Others carries the
// description as its text
func normalizeEvidence(t OutputType, description string, in OutputData) (OutputData, error) {
	switch t {
	case OutputDocument, OutputLog:
		return OutputData{URL: in.URL, FileName: in.FileName}, nil
	case OutputVideo:
		return OutputData{URL: in.URL}, nil
	case OutputOthers:
		return OutputData{URL: in.URL, FileName: in.FileName, IPFSCID: in.IPFSCID, OtherText: description}, nil
	}
	return OutputData{}, fmt.Errorf("%w: %q is not accepted as evidence", ErrValidation, t)
}

func buildOutputs(inputs []OutputInput, today time.Time, evidence bool) ([]Output, error) {
	out := make([]Output, 0, len(inputs))
	for i, in := range inputs {
		description := strings.TrimSpace(in.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: output %d needs a description", ErrValidation, i+1)
		}
		if !validOutputType(in.Type) {
			return nil, fmt.Errorf("%w: unknown output type %q", ErrValidation, in.Type)
		}

		var (
			data OutputData
			err  error
		)
		if evidence {
			data, err = normalizeEvidence(in.Type, description, in.Data)
		} else {
			data, err = normalizeData(in.Type, in.Data)
		}
		if err != nil {
			return nil, err
		}

		ts := today
		if in.Timestamp != nil && !in.Timestamp.IsZero() {
			ts = in.Timestamp.UTC()
		}

		prefix := "out-"
		if evidence {
			prefix = "ev-"
		}
		out = append(out, Output{
			ID:          prefix + uuid.NewString(),
			Type:        in.Type,
			Timestamp:   ts,
			Description: description,
			Data:        data,
		})
	}
	return out, nil
}

// latestOutputDate returns the most recent output timestamp, nil when empty
func latestOutputDate(outputs []Output) *time.Time {
	var latest *time.Time
	for i := range outputs {
		ts := outputs[i].Timestamp
		if latest == nil || ts.After(*latest) {
			latest = &ts
		}
	}
	return latest
}

// splitTags turns "AI, Robotics,,SLAM" into [AI Robotics SLAM]
func splitTags(raw string) []string {
	tags := []string{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
