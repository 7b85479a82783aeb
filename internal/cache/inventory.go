package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix       = "user:%d"
	PlaceKeyPrefix      = "place:%d"
	PlacesListKeyPrefix = "places:list:%s"
)

const (
	UserTTL  = 5 * time.Minute
	PlaceTTL = 10 * time.Minute
	// Places age out after a day anyway; keep the public list fresh.
	ListTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PlaceKey(placeID uint) string {
	return fmt.Sprintf(PlaceKeyPrefix, placeID)
}

// PlacesListKey keys the public place listing; category is "" for the
// unfiltered list.
func PlacesListKey(category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf(PlacesListKeyPrefix, category)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidatePlacesList drops every cached place listing. The category set is
// open, so match by prefix.
func InvalidatePlacesList(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "places:list:*", 0).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

func InvalidatePlace(ctx context.Context, placeID uint) {
	Invalidate(ctx, PlaceKey(placeID))
}
