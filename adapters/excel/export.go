// Package excel renders administrative exports as xlsx workbooks.
package excel

import (
	"bytes"
	"fmt"

	"seqcode/domain/sequence"

	"github.com/xuri/excelize/v2"
)

const definitionsSheet = "Definitions"

var definitionHeaders = []string{
	"ID", "Name", "Entity", "Attribute", "Trigger Event", "Trigger Attribute",
	"Conditional Attribute", "Conditional Value", "Counter Length",
	"Prefix Template", "Suffix Template", "Next Code", "Active", "Last Preview",
	"Created", "Updated",
}

// WriteDefinitions renders the definition list into an xlsx workbook and
// returns the serialized bytes.
func WriteDefinitions(defs []sequence.Definition) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", definitionsSheet); err != nil {
		return nil, fmt.Errorf("failed to set up workbook: %w", err)
	}

	for col, header := range definitionHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(definitionsSheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header row: %w", err)
		}
	}

	for row, def := range defs {
		values := []interface{}{
			def.ID.String(), def.Name, def.EntityName, def.AttributeName,
			def.TriggerEvent.String(), def.TriggerAttribute,
			def.ConditionalAttribute, def.ConditionalValue, def.CharacterLength,
			def.PrefixTemplate, def.SuffixTemplate, def.NextCode, def.Active,
			def.LastPreview, def.CreatedAt, def.UpdatedAt,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(definitionsSheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write definition %s: %w", def.ID, err)
			}
		}
	}

	return f.WriteToBuffer()
}
