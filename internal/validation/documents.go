package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hyperengineering/ideaforge/internal/types"
)

// stageData is the typed payload of a stage document.
type stageData interface {
	check(c *Collector)
}

type ideateData struct {
	IdeaTitle   string `json:"ideaTitle"`
	IdeaSummary string `json:"ideaSummary"`
	Audience    string `json:"audience"`
}

func (d ideateData) check(c *Collector) {
	c.Add(ValidateRequired("data.ideaTitle", d.IdeaTitle))
	c.Add(ValidateText("data.ideaSummary", d.IdeaSummary, MaxDescriptionLength))
}

type validateData struct {
	ReportID         string   `json:"reportId"`
	OpportunityScore *float64 `json:"opportunityScore"`
}

func (d validateData) check(c *Collector) {
	if d.OpportunityScore != nil && (*d.OpportunityScore < 0 || *d.OpportunityScore > 100) {
		c.Add(&ValidationError{Field: "data.opportunityScore", Message: "must be between 0 and 100"})
	}
}

type designData struct {
	Features []string `json:"features"`
	Notes    string   `json:"notes"`
}

func (d designData) check(c *Collector) {
	c.Add(ValidateText("data.notes", d.Notes, MaxDescriptionLength))
}

type buildData struct {
	Mode       types.BuildPlanMode `json:"mode"`
	Milestones []string            `json:"milestones"`
}

func (d buildData) check(c *Collector) {
	if d.Mode != "" {
		c.Add(ValidateEnum("data.mode", d.Mode, []types.BuildPlanMode{types.BuildPlanStandard, types.BuildPlanVibeCoder}))
	}
}

type launchData struct {
	BlueprintID string   `json:"blueprintId"`
	Channels    []string `json:"channels"`
}

func (launchData) check(*Collector) {}

type monetiseData struct {
	BlueprintID  string `json:"blueprintId"`
	PricingModel string `json:"pricingModel"`
}

func (monetiseData) check(*Collector) {}

func dataFor(stage types.Stage) stageData {
	switch stage {
	case types.StageIdeate:
		return &ideateData{}
	case types.StageValidate:
		return &validateData{}
	case types.StageDesign:
		return &designData{}
	case types.StageBuild:
		return &buildData{}
	case types.StageLaunch:
		return &launchData{}
	case types.StageMonetise:
		return &monetiseData{}
	}
	return nil
}

// ValidateStageDocument checks a stage input/output envelope against the
// schema of the stage it is stored under. Unknown data fields are allowed;
// known fields must have the declared type.
func ValidateStageDocument(stage types.Stage, doc *types.StageDocument) *ValidationError {
	if doc == nil {
		return nil
	}
	if doc.Version != types.StageDocumentVersion {
		return &ValidationError{Field: "version", Message: fmt.Sprintf("must be %d", types.StageDocumentVersion)}
	}
	if doc.Stage != stage {
		return &ValidationError{Field: "stage", Message: fmt.Sprintf("must match %q", stage)}
	}

	data := dataFor(stage)
	if data == nil {
		return &ValidationError{Field: "stage", Message: "unknown stage"}
	}
	raw := bytes.TrimSpace(doc.Data)
	if len(raw) == 0 || raw[0] != '{' {
		return &ValidationError{Field: "data", Message: "must be a JSON object"}
	}
	if err := json.Unmarshal(raw, data); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{
				Field:   "data." + typeErr.Field,
				Message: fmt.Sprintf("must be of type %s", typeErr.Type),
			}
		}
		return &ValidationError{Field: "data", Message: "must be valid JSON"}
	}

	var c Collector
	data.check(&c)
	if errs := c.Errors(); len(errs) > 0 {
		return &errs[0]
	}
	return nil
}
