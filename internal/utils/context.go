package utils

import "context"

func GetString(ctx context.Context, key any) (string, bool) {
	v := ctx.Value(key)
	s, ok := v.(string)
	return s, ok
}

func GetBool(ctx context.Context, key any) bool {
	b, _ := ctx.Value(key).(bool)
	return b
}
