package types

import (
	"encoding/json"
	"time"
)

// Stage is one phase of the guided product journey.
type Stage string

const (
	StageIdeate   Stage = "ideate"
	StageValidate Stage = "validate"
	StageDesign   Stage = "design"
	StageBuild    Stage = "build"
	StageLaunch   Stage = "launch"
	StageMonetise Stage = "monetise"
)

// Stages lists every journey stage in order.
var Stages = []Stage{StageIdeate, StageValidate, StageDesign, StageBuild, StageLaunch, StageMonetise}

// StageStatus is the lifecycle state of a project stage.
type StageStatus string

const (
	StageStatusPending    StageStatus = "pending"
	StageStatusInProgress StageStatus = "in_progress"
	StageStatusCompleted  StageStatus = "completed"
)

// Project is the root aggregate owned by a single user.
type Project struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Progress    float64   `json:"progress"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewProject carries the fields needed to create a project.
type NewProject struct {
	UserID      string
	Title       string
	Description string
}

// ProjectUpdate holds optional project field changes. Nil fields are left untouched.
type ProjectUpdate struct {
	Title       *string  `json:"title,omitempty"`
	Description *string  `json:"description,omitempty"`
	Progress    *float64 `json:"progress,omitempty"`
}

// ProjectStage is the per-(project, stage) state row.
type ProjectStage struct {
	ProjectID string         `json:"projectId"`
	Stage     Stage          `json:"stage"`
	UserID    string         `json:"userId"`
	Input     *StageDocument `json:"input,omitempty"`
	Output    *StageDocument `json:"output,omitempty"`
	Status    StageStatus    `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// StageDocument is the versioned envelope stored in a stage's input/output columns.
type StageDocument struct {
	Version int             `json:"version"`
	Stage   Stage           `json:"stage"`
	Data    json.RawMessage `json:"data"`
}

// StageDocumentVersion is the only envelope version currently written.
const StageDocumentVersion = 1

// --- Validation reports ---

// Section is a named validation sub-topic.
type Section string

const (
	SectionProblem     Section = "problem"
	SectionMarket      Section = "market"
	SectionCompetition Section = "competition"
	SectionAudience    Section = "audience"
	SectionFeasibility Section = "feasibility"
	SectionPricing     Section = "pricing"
	SectionGoToMarket  Section = "go-to-market"
)

// Sections lists every validation section.
var Sections = []Section{
	SectionProblem, SectionMarket, SectionCompetition, SectionAudience,
	SectionFeasibility, SectionPricing, SectionGoToMarket,
}

// ValidSection reports whether s names a known section.
func ValidSection(s string) bool {
	for _, sec := range Sections {
		if string(sec) == s {
			return true
		}
	}
	return false
}

// ReportStatus is the lifecycle state of a validation report.
type ReportStatus string

// ReportStatusReady is the only persisted state: reports are written once every step succeeded.
const ReportStatusReady ReportStatus = "ready"

// Idea is the user's product idea as submitted for validation.
type Idea struct {
	Title   string `json:"title"`
	Summary string `json:"summary,omitempty"`
}

// ValidationReport is the aggregate validation document for a project.
type ValidationReport struct {
	ID               string                    `json:"id"`
	ProjectID        string                    `json:"projectId"`
	UserID           string                    `json:"userId"`
	Status           ReportStatus              `json:"status"`
	Idea             Idea                      `json:"idea"`
	Pillars          []Pillar                  `json:"pillars"`
	SectionResults   map[Section]SectionResult `json:"sectionResults"`
	Personas         []Persona                 `json:"personas"`
	FeatureMap       FeatureMap                `json:"featureMap"`
	RiskRadar        RiskRadar                 `json:"riskRadar"`
	OpportunityScore OpportunityScore          `json:"opportunityScore"`
	IdeaEnhancement  IdeaEnhancement           `json:"ideaEnhancement"`
	CreatedAt        time.Time                 `json:"createdAt"`
	UpdatedAt        time.Time                 `json:"updatedAt"`
}

// SectionResult is the stored outcome for one validation section.
type SectionResult struct {
	Summary          string            `json:"summary"`
	Insights         []Insight         `json:"insights"`
	DeepDive         *DeepDive         `json:"deepDive,omitempty"`
	PersonaReactions []PersonaReaction `json:"personaReactions"`
	CompletedActions []string          `json:"completedActions"`
}

// Insight is one line of a section's insight breakdown.
type Insight struct {
	Label  string `json:"label"`
	Detail string `json:"detail"`
}

// DeepDive is the expanded analysis of a section.
type DeepDive struct {
	Summary string   `json:"summary"`
	Details []string `json:"details"`
	Actions []string `json:"actions"`
}

// Persona is a synthetic target customer.
type Persona struct {
	Name       string   `json:"name"`
	Role       string   `json:"role"`
	Goals      []string `json:"goals"`
	PainPoints []string `json:"painPoints"`
	Quote      string   `json:"quote,omitempty"`
}

// PersonaReaction is a persona's response to a section.
type PersonaReaction struct {
	Persona   string `json:"persona"`
	Sentiment string `json:"sentiment"`
	Reaction  string `json:"reaction"`
}

// FeatureMap buckets candidate features by priority.
type FeatureMap struct {
	Must   []string `json:"must"`
	Should []string `json:"should"`
	Could  []string `json:"could"`
	Avoid  []string `json:"avoid"`
}

// RiskRadar scores risk per dimension, 0 (low) to 10 (high).
type RiskRadar struct {
	Market       float64 `json:"market"`
	Competition  float64 `json:"competition"`
	Technical    float64 `json:"technical"`
	Monetisation float64 `json:"monetisation"`
	GoToMarket   float64 `json:"goToMarket"`
	Commentary   string  `json:"commentary"`
}

// OpportunityScore is the overall 0..100 opportunity rating.
type OpportunityScore struct {
	Score     float64          `json:"score"`
	Breakdown []ScoreBreakdown `json:"breakdown"`
	Rationale string           `json:"rationale"`
}

// ScoreBreakdown is one weighted contribution to an opportunity score.
type ScoreBreakdown struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// IdeaEnhancement is the AI's rewrite of the idea.
type IdeaEnhancement struct {
	ImprovedTitle string   `json:"improvedTitle"`
	Pitch         string   `json:"pitch"`
	Changes       []string `json:"changes"`
}

// --- Pillars and ideate runs ---

// PillarID names one of the seven fixed scoring dimensions.
type PillarID string

const (
	PillarAudienceFit      PillarID = "audienceFit"
	PillarProblemClarity   PillarID = "problemClarity"
	PillarSolutionStrength PillarID = "solutionStrength"
	PillarCompetition      PillarID = "competition"
	PillarMarketSize       PillarID = "marketSize"
	PillarFeasibility      PillarID = "feasibility"
	PillarMonetisation     PillarID = "monetisation"
)

// PillarIDs lists the fixed pillars in canonical order.
var PillarIDs = []PillarID{
	PillarAudienceFit, PillarProblemClarity, PillarSolutionStrength,
	PillarCompetition, PillarMarketSize, PillarFeasibility, PillarMonetisation,
}

// PillarLabels maps pillars to display names used in prompts and generated text.
var PillarLabels = map[PillarID]string{
	PillarAudienceFit:      "Audience fit",
	PillarProblemClarity:   "Problem clarity",
	PillarSolutionStrength: "Solution strength",
	PillarCompetition:      "Competition",
	PillarMarketSize:       "Market size",
	PillarFeasibility:      "Feasibility",
	PillarMonetisation:     "Monetisation",
}

// ValidPillar reports whether id names a known pillar.
func ValidPillar(id string) bool {
	_, ok := PillarLabels[PillarID(id)]
	return ok
}

// Pillar scores are bounded to [MinPillarScore, MaxPillarScore].
const (
	MinPillarScore = 0.0
	MaxPillarScore = 10.0
	// MaxPillarNotes caps a pillar's opportunities and risks lists.
	MaxPillarNotes = 3
)

// Pillar is one scored dimension.
type Pillar struct {
	ID            PillarID `json:"id"`
	Label         string   `json:"label"`
	Score         float64  `json:"score"`
	Strength      string   `json:"strength"`
	Weakness      string   `json:"weakness"`
	Improvement   string   `json:"improvement"`
	Opportunities []string `json:"opportunities"`
	Risks         []string `json:"risks"`
}

// QuickTake is a headline metric on an ideate snapshot.
type QuickTake struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta"`
}

// Suggestion is an improvement the user may apply.
type Suggestion struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Applied bool   `json:"applied"`
}

// ExperimentStatus is the state of an ideate experiment.
type ExperimentStatus string

const (
	ExperimentDraft      ExperimentStatus = "draft"
	ExperimentValidating ExperimentStatus = "validating"
	ExperimentScheduled  ExperimentStatus = "scheduled"
)

// ValidExperimentStatus reports whether s is a known experiment status.
func ValidExperimentStatus(s string) bool {
	switch ExperimentStatus(s) {
	case ExperimentDraft, ExperimentValidating, ExperimentScheduled:
		return true
	}
	return false
}

// Experiment is a proposed validation experiment.
type Experiment struct {
	ID         string           `json:"id"`
	Title      string           `json:"title"`
	Hypothesis string           `json:"hypothesis"`
	Status     ExperimentStatus `json:"status"`
}

// IdeateRun is a per-project ideation snapshot.
type IdeateRun struct {
	ID          string       `json:"id"`
	ProjectID   string       `json:"projectId"`
	UserID      string       `json:"userId"`
	Headline    string       `json:"headline"`
	Narrative   string       `json:"narrative"`
	QuickTakes  []QuickTake  `json:"quickTakes"`
	Pillars     []Pillar     `json:"pillars"`
	Suggestions []Suggestion `json:"suggestions"`
	Experiments []Experiment `json:"experiments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// --- Blueprints ---

// BlueprintKind selects the launch or monetise blueprint.
type BlueprintKind string

const (
	BlueprintLaunch   BlueprintKind = "launch"
	BlueprintMonetise BlueprintKind = "monetise"
)

// BlueprintSections lists the section ids each blueprint kind accepts.
var BlueprintSections = map[BlueprintKind][]string{
	BlueprintLaunch:   {"messaging_framework", "launch_channels", "tracking_metrics", "activation_blueprint"},
	BlueprintMonetise: {"pricing_plan", "offer_plan", "revenue_experiments", "retention_levers"},
}

// ValidBlueprintSection reports whether section belongs to kind.
func ValidBlueprintSection(kind BlueprintKind, section string) bool {
	for _, s := range BlueprintSections[kind] {
		if s == section {
			return true
		}
	}
	return false
}

// Blueprint is the persisted aggregate for the launch or monetise stage.
type Blueprint struct {
	ID                string                     `json:"id"`
	ProjectID         string                     `json:"projectId"`
	UserID            string                     `json:"userId"`
	Kind              BlueprintKind              `json:"kind"`
	SectionCompletion map[string]bool            `json:"sectionCompletion"`
	Sections          map[string]json.RawMessage `json:"sections"`
	LastAIRun         *time.Time                 `json:"lastAiRun,omitempty"`
	CreatedAt         time.Time                  `json:"createdAt"`
	UpdatedAt         time.Time                  `json:"updatedAt"`
}

// MessagingFramework is the launch blueprint's positioning section.
type MessagingFramework struct {
	Positioning string   `json:"positioning"`
	ValueProps  []string `json:"valueProps"`
	Taglines    []string `json:"taglines"`
	ProofPoints []string `json:"proofPoints"`
	ToneOfVoice string   `json:"toneOfVoice"`
}

// --- AI configuration ---

// TaskStage is the stage an AI configuration record applies to.
type TaskStage string

const (
	TaskStageValidate TaskStage = "validate"
	TaskStageBuild    TaskStage = "build"
	TaskStageLaunch   TaskStage = "launch"
	TaskStageMonetise TaskStage = "monetise"
)

// TaskStages lists every configurable task stage.
var TaskStages = []TaskStage{TaskStageValidate, TaskStageBuild, TaskStageLaunch, TaskStageMonetise}

// ValidTaskStage reports whether s is a configurable task stage.
func ValidTaskStage(s string) bool {
	for _, ts := range TaskStages {
		if string(ts) == s {
			return true
		}
	}
	return false
}

// AIConfig is a stored per-stage override. Nil or blank fields fall back to defaults.
type AIConfig struct {
	Stage                 TaskStage `json:"stage"`
	Model                 *string   `json:"model,omitempty"`
	SystemPrompt          *string   `json:"systemPrompt,omitempty"`
	UserPrompt            *string   `json:"userPrompt,omitempty"`
	SystemPromptVibeCoder *string   `json:"systemPromptVibeCoder,omitempty"`
	UserPromptVibeCoder   *string   `json:"userPromptVibeCoder,omitempty"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// StageSetting toggles a sub-step of a stage.
type StageSetting struct {
	Stage     Stage     `json:"stage"`
	SubStage  string    `json:"subStage"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BuildPlan is the generated build-stage plan.
type BuildPlan struct {
	Mode       string   `json:"mode"`
	Summary    string   `json:"summary"`
	Stack      []string `json:"stack"`
	Milestones []string `json:"milestones"`
	Prompts    []string `json:"prompts"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	LLMModel string `json:"llm_model"`
}
