// Copyright 2026 The Huddle Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"reflect"
)

// JSONOutput is embedded in a params struct to add a --json flag.
//
//	type listParams struct {
//	    cli.JSONOutput
//	    Workspace string `flag:"workspace,w" desc:"workspace ID"`
//	}
//
//	if done, err := params.EmitJSON(out, members); done {
//	    return err
//	}
type JSONOutput struct {
	OutputJSON bool `flag:"json" desc:"output as JSON"`
}

// EmitJSON writes result as indented JSON when --json is set. It
// reports false when the caller should print text instead. Nil slices
// encode as [] rather than null.
func (j *JSONOutput) EmitJSON(out io.Writer, result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	return true, WriteJSON(out, normalizeNilSlice(result))
}

// WriteJSON marshals value as indented JSON to out.
func WriteJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
