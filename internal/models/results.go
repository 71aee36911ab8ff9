package models

// LikeResult is returned by the like toggle. Liked reports the state after
// the call.
type LikeResult struct {
	Liked bool  `json:"liked"`
	Post  *Post `json:"post"`
}

// RemoveLikeResult reports whether a like row was actually deleted.
type RemoveLikeResult struct {
	Removed bool  `json:"removed"`
	Post    *Post `json:"post"`
}

// ShareResult is returned by SharePost. Created is false when the caller had
// already shared the post.
type ShareResult struct {
	Created bool  `json:"created"`
	Post    *Post `json:"post"`
}

// FollowResult describes the follow edge after Follow/Unfollow. Changed is
// false when the edge was already in the requested state.
type FollowResult struct {
	FolloweeID uint `json:"followee_id"`
	Following  bool `json:"following"`
	Changed    bool `json:"changed"`
}
