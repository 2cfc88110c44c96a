package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	UserPostsKeyPrefix    = "user:%d:posts"
	UserCommentsKeyPrefix = "user:%d:comments"
	PostCommentsKeyPrefix = "post:%d:comments"
	PostsListKeyName      = "posts:recent"
)

const (
	UserTTL     = 5 * time.Minute
	ListTTL     = 30 * time.Second
	CommentsTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UserPostsKey(userID uint) string {
	return fmt.Sprintf(UserPostsKeyPrefix, userID)
}

func UserCommentsKey(userID uint) string {
	return fmt.Sprintf(UserCommentsKeyPrefix, userID)
}

func PostCommentsKey(postID uint) string {
	return fmt.Sprintf(PostCommentsKeyPrefix, postID)
}

func PostsListKey() string {
	return PostsListKeyName
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePost drops every cached view a post mutation can stale:
// the recent list, the author's post list and the post's comments.
func InvalidatePost(ctx context.Context, postID, authorID uint) {
	Invalidate(ctx, PostsListKey(), UserPostsKey(authorID), PostCommentsKey(postID))
}
