package model

// UserProfile carries per-session product settings and counters.
// Stored blobs may predate fields added later; loading merges them over
// DefaultProfile so absent fields keep their zero-state defaults.
type UserProfile struct {
	Diagnosis         string `json:"diagnosis"`
	IsStoryModeActive bool   `json:"isStoryModeActive"`
	StoryText         string `json:"storyText"`
	MessageCount      int    `json:"messageCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

func DefaultProfile() UserProfile {
	return UserProfile{}
}
