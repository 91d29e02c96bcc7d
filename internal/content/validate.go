package content

import (
	"fmt"

	"github.com/MarcoPoloResearchLab/arcana/backend/internal/validation"
)

const (
	ruleGoal     = "oneof=sale engagement"
	rulePositive = "min=1"
	msgGoal      = "must be one of: sale, engagement"
	msgPositive  = "must be at least 1"
)

// Validate checks the insert against the ContentStrategy schema.
func (in StrategyInsert) Validate() error {
	rules := validation.Rules{}
	rules.RequiredText("topic", in.Topic)
	rules.Check("goal", string(in.Goal), ruleGoal, msgGoal)
	if in.Days != nil {
		rules.Check("days", *in.Days, rulePositive, msgPositive)
	}
	rules.RequiredList("posts", in.Posts)
	for index, post := range in.Posts {
		prefix := fmt.Sprintf("posts[%d]", index)
		rules.Check(prefix+".day", post.Day, rulePositive, msgPositive)
		rules.RequiredText(prefix+".topic", post.Topic)
	}
	return rules.Err()
}

func (in StrategyInsert) record(owner UserID, header recordHeader) ContentStrategy {
	days := DefaultStrategyDays
	if in.Days != nil {
		days = *in.Days
	}
	posts := make([]ContentPost, len(in.Posts))
	for index, post := range in.Posts {
		if post.Hashtags == nil {
			post.Hashtags = []string{}
		}
		posts[index] = post
	}
	return ContentStrategy{
		ID:        header.id,
		UserID:    owner.String(),
		Topic:     in.Topic,
		Goal:      in.Goal,
		Days:      days,
		Posts:     posts,
		CreatedAt: header.createdAt,
	}
}

// Validate checks the insert against the ArchetypeResult schema.
func (in ArchetypeInsert) Validate() error {
	rules := validation.Rules{}
	rules.RequiredText("archetypeName", in.ArchetypeName)
	rules.RequiredText("archetypeDescription", in.ArchetypeDescription)
	rules.RequiredList("answers", in.Answers)
	rules.RequiredList("recommendations", in.Recommendations)
	return rules.Err()
}

func (in ArchetypeInsert) record(owner UserID, header recordHeader) ArchetypeResult {
	return ArchetypeResult{
		ID:                   header.id,
		UserID:               owner.String(),
		ArchetypeName:        in.ArchetypeName,
		ArchetypeDescription: in.ArchetypeDescription,
		Answers:              append([]int{}, in.Answers...),
		Recommendations:      append([]string{}, in.Recommendations...),
		CreatedAt:            header.createdAt,
	}
}

// Validate checks the insert against the VoicePost schema.
func (in VoicePostInsert) Validate() error {
	rules := validation.Rules{}
	rules.RequiredText("originalText", in.OriginalText)
	rules.RequiredText("refinedText", in.RefinedText)
	rules.RequiredText("tone", in.Tone)
	return rules.Err()
}

func (in VoicePostInsert) record(owner UserID, header recordHeader) VoicePost {
	return VoicePost{
		ID:           header.id,
		UserID:       owner.String(),
		OriginalText: in.OriginalText,
		RefinedText:  in.RefinedText,
		Tone:         in.Tone,
		CreatedAt:    header.createdAt,
	}
}

// Validate checks the insert against the CaseStudy schema.
func (in CaseStudyInsert) Validate() error {
	rules := validation.Rules{}
	rules.RequiredText("reviewText", in.ReviewText)
	rules.RequiredList("tags", in.Tags)
	return rules.Err()
}

func (in CaseStudyInsert) record(owner UserID, header recordHeader) CaseStudy {
	record := CaseStudy{
		ID:             header.id,
		UserID:         owner.String(),
		ReviewText:     in.ReviewText,
		Before:         in.Before,
		Action:         in.Action,
		After:          in.After,
		Tags:           append([]string{}, in.Tags...),
		GeneratedQuote: in.GeneratedQuote,
		GeneratedBody:  in.GeneratedBody,
		CreatedAt:      header.createdAt,
	}
	if in.GeneratedHeadlines != nil {
		record.GeneratedHeadlines = append([]string{}, in.GeneratedHeadlines...)
	}
	return record
}
