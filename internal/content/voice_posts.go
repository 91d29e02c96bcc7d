package content

import "context"

const (
	opListVoicePosts  = "content.list_voice_posts"
	opGetVoicePost    = "content.get_voice_post"
	opCreateVoicePost = "content.create_voice_post"
	opDeleteVoicePost = "content.delete_voice_post"
)

// ListVoicePosts returns the owner's voice posts, newest first.
func (s *Service) ListVoicePosts(ctx context.Context, owner UserID) ([]VoicePost, error) {
	return listOwned[VoicePost](ctx, s, opListVoicePosts, owner)
}

// GetVoicePost reports found == false when the id is unknown or owned by someone else.
func (s *Service) GetVoicePost(ctx context.Context, owner UserID, id string) (VoicePost, bool, error) {
	return getOwned[VoicePost](ctx, s, opGetVoicePost, owner, id)
}

// CreateVoicePost validates and stores a refined post.
func (s *Service) CreateVoicePost(ctx context.Context, owner UserID, insert VoicePostInsert) (VoicePost, error) {
	return createOwned[VoicePost](ctx, s, opCreateVoicePost, owner, insert)
}

// DeleteVoicePost is idempotent.
func (s *Service) DeleteVoicePost(ctx context.Context, owner UserID, id string) error {
	return deleteOwned[VoicePost](ctx, s, opDeleteVoicePost, owner, id)
}
