package models

import "time"

// GuideInputType distinguishes the two kinds of study-guide inputs.
type GuideInputType string

const (
	GuideInputScripture GuideInputType = "scripture"
	GuideInputTopic     GuideInputType = "topic"
)

// StudyGuideModel is the canonical generated study guide, shared across every
// principal that requested the same input. The composite unique index on
// (input_type, input_hash, lang) is what guarantees at most one row per
// fingerprint; concurrent writers race on it and losers re-read.
// Rows are never mutated after creation.
type StudyGuideModel struct {
	Base
	InputType GuideInputType `json:"input_type" gorm:"type:varchar(16);uniqueIndex:idx_guides_fingerprint,priority:1;not null"`
	InputHash string         `json:"input_hash" gorm:"type:char(64);uniqueIndex:idx_guides_fingerprint,priority:2;not null"` // sha256(normalized input)
	Lang      string         `json:"lang"       gorm:"type:varchar(8);uniqueIndex:idx_guides_fingerprint,priority:3;not null;default:'en'"`

	Summary           string      `json:"summary"             gorm:"type:text;not null"`
	Interpretation    string      `json:"interpretation"      gorm:"type:text"`
	RelatedRefs       StringArray `json:"related_refs"        gorm:"type:json"`
	ReflectionPrompts StringArray `json:"reflection_prompts"  gorm:"type:json"`
	ApplicationPoints StringArray `json:"application_points"  gorm:"type:json"`
}

func (StudyGuideModel) TableName() string { return "study_guides" }

// UserStudyGuideModel records that a signed-in user has generated or viewed a
// guide. Many users may point at the same guide; the pair (user_id, guide_id)
// is unique so repeat requests never duplicate history entries.
type UserStudyGuideModel struct {
	Base
	UserID  string `json:"user_id"  gorm:"type:char(36);uniqueIndex:idx_user_guides_pair,priority:1;not null"`
	GuideID string `json:"guide_id" gorm:"type:char(36);uniqueIndex:idx_user_guides_pair,priority:2;index;not null"`
	IsSaved bool   `json:"is_saved" gorm:"default:false"`
}

func (UserStudyGuideModel) TableName() string { return "user_study_guides" }

// AnonStudyGuideModel is the anonymous-session variant of the ownership
// record. ExpiresAt is stamped at link time and honored by the retention
// sweeper; nothing else distinguishes it from the user variant.
type AnonStudyGuideModel struct {
	Base
	SessionID string    `json:"session_id" gorm:"type:char(36);uniqueIndex:idx_anon_guides_pair,priority:1;not null"`
	GuideID   string    `json:"guide_id"   gorm:"type:char(36);uniqueIndex:idx_anon_guides_pair,priority:2;index;not null"`
	IsSaved   bool      `json:"is_saved"   gorm:"default:false"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
}

func (AnonStudyGuideModel) TableName() string { return "anonymous_study_guides" }
