package pageconfig

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/specialistvlad/pagegridgo/internal/model"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// GridColumns is the width of the layout grid.
const GridColumns = 10

// ContainerTypes are the accepted container hints.
var ContainerTypes = []string{"page", "column", "tab", "card", "modal", "inline"}

// ValidateContainer checks a container hint against ContainerTypes.
func ValidateContainer(container string) error {
	for _, c := range ContainerTypes {
		if c == strings.ToLower(container) {
			return nil
		}
	}
	return fmt.Errorf("container must be one of %s, got '%s'", strings.Join(ContainerTypes, ", "), container)
}

// ValidatePosition checks {col:{start,span}, row:{start,span}} against the
// grid: integers, start and span at least 1, and columns within GridColumns.
func ValidatePosition(pos value.Value) error {
	if !pos.IsObject() {
		return fmt.Errorf("position must be an object")
	}

	col, ok := pos.Get("col")
	if !ok || !col.IsObject() {
		return fmt.Errorf("position.col is required and must be an object")
	}
	colStart, ok := intField(col, "start")
	if !ok || colStart < 1 || colStart > GridColumns {
		return fmt.Errorf("position.col.start must be integer between 1 and %d", GridColumns)
	}
	colSpan, ok := intField(col, "span")
	if !ok || colSpan < 1 || colSpan > GridColumns {
		return fmt.Errorf("position.col.span must be integer between 1 and %d", GridColumns)
	}
	if colStart+colSpan-1 > GridColumns {
		return fmt.Errorf("position column range (%d + %d) exceeds grid width (%d)", colStart, colSpan, GridColumns)
	}

	row, ok := pos.Get("row")
	if !ok || !row.IsObject() {
		return fmt.Errorf("position.row is required and must be an object")
	}
	if start, ok := intField(row, "start"); !ok || start < 1 {
		return fmt.Errorf("position.row.start must be positive integer")
	}
	if span, ok := intField(row, "span"); !ok || span < 1 {
		return fmt.Errorf("position.row.span must be positive integer")
	}
	return nil
}

func intField(obj value.Value, key string) (int, bool) {
	f, ok := obj.Get(key)
	if !ok {
		return 0, false
	}
	n, ok := f.AsNumber()
	if !ok || n != math.Trunc(n) {
		return 0, false
	}
	return int(n), true
}

// ValidateDefinition shape-checks a single definition against the grid
// standards. It never fails; problems are reported.
func ValidateDefinition(def *model.Definition) Report {
	if def == nil {
		return newReport([]string{"EventType must be an object"}, nil)
	}

	var violations, warnings []string
	container := def.Raw.GetString("container")
	position, hasPosition := def.Attr("position")

	if container != "" {
		if err := ValidateContainer(container); err != nil {
			violations = append(violations, "Invalid container: "+err.Error())
		}
	} else if len(def.Components) > 0 {
		warnings = append(warnings, "EventType has components but no container type specified")
	}

	if hasPosition && !isLegacyPosition(position) {
		if err := ValidatePosition(position); err != nil {
			violations = append(violations, "Invalid position: "+err.Error())
		}
	} else if !hasPosition && container != "" && !strings.EqualFold(container, "page") {
		warnings = append(warnings, "EventType has container but no position specified")
	}

	if _, hasWidth := def.Attr("width"); hasWidth || isLegacyPosition(position) {
		warnings = append(warnings, "Uses old-style positioning (width/left/right) - consider updating to grid position")
	}

	if def.IsContainer() && len(def.Components) == 0 {
		warnings = append(warnings, "Container declares no components")
	}

	seenIDs := make(map[string]int)
	for i, ref := range def.Components {
		prefix := fmt.Sprintf("Component[%d]: ", i)
		if ref.ID == "" {
			violations = append(violations, prefix+"missing id")
		} else if first, dup := seenIDs[ref.ID]; dup {
			warnings = append(warnings, fmt.Sprintf("%sduplicate id '%s' (first at Component[%d])", prefix, ref.ID, first))
		} else {
			seenIDs[ref.ID] = i
		}
		if ref.Container != "" {
			if err := ValidateContainer(ref.Container); err != nil {
				violations = append(violations, prefix+"Invalid container: "+err.Error())
			}
		}
		if !ref.Position.IsNull() {
			if err := ValidatePosition(ref.Position); err != nil {
				violations = append(violations, prefix+"Invalid position: "+err.Error())
			}
		} else if ref.Container != "" && !strings.EqualFold(ref.Container, "page") {
			warnings = append(warnings, prefix+"has container but no position specified")
		}
	}

	for i, f := range def.Fields {
		if f.GetString("name") == "" {
			violations = append(violations, fmt.Sprintf("Field[%d]: missing name", i))
		}
	}

	classes := make([]string, 0, len(def.WorkflowTriggers))
	for class := range def.WorkflowTriggers {
		classes = append(classes, class)
	}
	sort.Strings(classes)
	for _, class := range classes {
		for i, t := range def.WorkflowTriggers[class] {
			prefix := fmt.Sprintf("workflowTriggers.%s[%d]: ", class, i)
			if t.Name == "" {
				violations = append(violations, prefix+"trigger has no name")
			}
			if !t.Namespace.Valid() {
				violations = append(violations, fmt.Sprintf("%sunknown trigger type '%s'", prefix, t.Namespace))
			}
		}
	}

	return newReport(violations, warnings)
}

func isLegacyPosition(pos value.Value) bool {
	s, ok := pos.AsString()
	return ok && (s == "left" || s == "right")
}
