package content

import (
	"time"

	"gorm.io/datatypes"
)

// Goal enumerates what a content strategy is optimised for.
type Goal string

const (
	GoalSale       Goal = "sale"
	GoalEngagement Goal = "engagement"
)

// DefaultStrategyDays applies when an insert omits days.
const DefaultStrategyDays = 7

// ContentPost is one planned post inside a strategy.
type ContentPost struct {
	Day      int      `json:"day"`
	Topic    string   `json:"topic"`
	Hook     string   `json:"hook"`
	CTA      string   `json:"cta"`
	Hashtags []string `json:"hashtags"`
}

// ContentStrategy is a multi-day posting plan for one topic.
type ContentStrategy struct {
	ID        string                           `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	UserID    string                           `gorm:"column:user_id;size:190;not null;index:idx_strategies_user_created,priority:1" json:"userId"`
	Topic     string                           `gorm:"column:topic;type:text;not null" json:"topic"`
	Goal      Goal                             `gorm:"column:goal;size:32;not null" json:"goal"`
	Days      int                              `gorm:"column:days;not null" json:"days"`
	Posts     datatypes.JSONSlice[ContentPost] `gorm:"column:posts;not null" json:"posts"`
	CreatedAt time.Time                        `gorm:"column:created_at;not null;index:idx_strategies_user_created,priority:2" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (ContentStrategy) TableName() string {
	return "content_strategies"
}

func (r ContentStrategy) ownerID() string {
	return r.UserID
}

// StrategyInsert is the client-supplied part of a ContentStrategy.
type StrategyInsert struct {
	Topic string        `json:"topic"`
	Goal  Goal          `json:"goal"`
	Days  *int          `json:"days"`
	Posts []ContentPost `json:"posts"`
}

// ArchetypeResult stores one completed brand-archetype quiz.
type ArchetypeResult struct {
	ID                   string                      `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	UserID               string                      `gorm:"column:user_id;size:190;not null;index:idx_archetypes_user_created,priority:1" json:"userId"`
	ArchetypeName        string                      `gorm:"column:archetype_name;type:text;not null" json:"archetypeName"`
	ArchetypeDescription string                      `gorm:"column:archetype_description;type:text;not null" json:"archetypeDescription"`
	Answers              datatypes.JSONSlice[int]    `gorm:"column:answers;not null" json:"answers"`
	Recommendations      datatypes.JSONSlice[string] `gorm:"column:recommendations;not null" json:"recommendations"`
	CreatedAt            time.Time                   `gorm:"column:created_at;not null;index:idx_archetypes_user_created,priority:2" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (ArchetypeResult) TableName() string {
	return "archetype_results"
}

func (r ArchetypeResult) ownerID() string {
	return r.UserID
}

// ArchetypeInsert is the client-supplied part of an ArchetypeResult.
type ArchetypeInsert struct {
	ArchetypeName        string   `json:"archetypeName"`
	ArchetypeDescription string   `json:"archetypeDescription"`
	Answers              []int    `json:"answers"`
	Recommendations      []string `json:"recommendations"`
}

// VoicePost pairs a dictated transcript with its rewritten post.
type VoicePost struct {
	ID           string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	UserID       string    `gorm:"column:user_id;size:190;not null;index:idx_voice_posts_user_created,priority:1" json:"userId"`
	OriginalText string    `gorm:"column:original_text;type:text;not null" json:"originalText"`
	RefinedText  string    `gorm:"column:refined_text;type:text;not null" json:"refinedText"`
	Tone         string    `gorm:"column:tone;size:64;not null" json:"tone"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;index:idx_voice_posts_user_created,priority:2" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (VoicePost) TableName() string {
	return "voice_posts"
}

func (r VoicePost) ownerID() string {
	return r.UserID
}

// VoicePostInsert is the client-supplied part of a VoicePost.
type VoicePostInsert struct {
	OriginalText string `json:"originalText"`
	RefinedText  string `json:"refinedText"`
	Tone         string `json:"tone"`
}

// CaseStudy turns a client review into publishable social proof.
type CaseStudy struct {
	ID                 string                      `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	UserID             string                      `gorm:"column:user_id;size:190;not null;index:idx_cases_user_created,priority:1" json:"userId"`
	ReviewText         string                      `gorm:"column:review_text;type:text;not null" json:"reviewText"`
	Before             *string                     `gorm:"column:before_text;type:text" json:"before"`
	Action             *string                     `gorm:"column:action_text;type:text" json:"action"`
	After              *string                     `gorm:"column:after_text;type:text" json:"after"`
	Tags               datatypes.JSONSlice[string] `gorm:"column:tags;not null" json:"tags"`
	GeneratedHeadlines datatypes.JSONSlice[string] `gorm:"column:generated_headlines" json:"generatedHeadlines"`
	GeneratedQuote     *string                     `gorm:"column:generated_quote;type:text" json:"generatedQuote"`
	GeneratedBody      *string                     `gorm:"column:generated_body;type:text" json:"generatedBody"`
	CreatedAt          time.Time                   `gorm:"column:created_at;not null;index:idx_cases_user_created,priority:2" json:"createdAt"`
}

// TableName provides the explicit table binding for GORM.
func (CaseStudy) TableName() string {
	return "case_studies"
}

func (r CaseStudy) ownerID() string {
	return r.UserID
}

// CaseStudyInsert is the client-supplied part of a CaseStudy.
type CaseStudyInsert struct {
	ReviewText         string   `json:"reviewText"`
	Before             *string  `json:"before"`
	Action             *string  `json:"action"`
	After              *string  `json:"after"`
	Tags               []string `json:"tags"`
	GeneratedHeadlines []string `json:"generatedHeadlines"`
	GeneratedQuote     *string  `json:"generatedQuote"`
	GeneratedBody      *string  `json:"generatedBody"`
}

// Models lists every record table for schema migration.
func Models() []any {
	return []any{&ContentStrategy{}, &ArchetypeResult{}, &VoicePost{}, &CaseStudy{}}
}
