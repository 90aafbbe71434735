package putio

// Friend is a user a file is shared with.
type Friend struct {
	Username string
	Avatar   string
	// ShareID identifies the share when revoking it.
	ShareID int64
}

// DecodeFriend builds a Friend from an entry of a shared-with response.
func DecodeFriend(m map[string]any) Friend {
	return Friend{
		Username: stringField(m, "user_name", ""),
		Avatar:   stringField(m, "user_avatar_url", ""),
		ShareID:  intField(m, "share_id"),
	}
}

func decodeFriends(values []any) []Friend {
	friends := make([]Friend, 0, len(values))
	for _, v := range values {
		if m, ok := asObject(v); ok {
			friends = append(friends, DecodeFriend(m))
		}
	}
	return friends
}
