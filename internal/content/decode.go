package content

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingEnvelope reports a wrapped payload whose envelope key is absent.
var ErrMissingEnvelope = errors.New("missing envelope key")

// DecodeNews decodes the {"items": [...]} news envelope.
func DecodeNews(data []byte) ([]NewsItem, error) {
	var envelope struct {
		Items *[]NewsItem `json:"items"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode news: %w", err)
	}
	if envelope.Items == nil {
		return nil, fmt.Errorf("decode news: %w %q", ErrMissingEnvelope, "items")
	}
	return *envelope.Items, nil
}

// DecodeFeaturedSections decodes the {"sections": [...]} envelope.
func DecodeFeaturedSections(data []byte) ([]FeaturedSection, error) {
	var envelope struct {
		Sections *[]FeaturedSection `json:"sections"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode featured sections: %w", err)
	}
	if envelope.Sections == nil {
		return nil, fmt.Errorf("decode featured sections: %w %q", ErrMissingEnvelope, "sections")
	}
	return *envelope.Sections, nil
}

// DecodeContents decodes the top-level schedule object.
func DecodeContents(data []byte) (Contents, error) {
	var raw struct {
		Contents
		Sessions *[]Session `json:"contents"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Contents{}, fmt.Errorf("decode contents: %w", err)
	}
	if raw.Sessions == nil {
		return Contents{}, fmt.Errorf("decode contents: %w %q", ErrMissingEnvelope, "contents")
	}
	out := raw.Contents
	out.Sessions = *raw.Sessions
	return out, nil
}

// DecodeVideos decodes the top-level sessions/videos object.
func DecodeVideos(data []byte) (VideoCatalog, error) {
	var catalog VideoCatalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return VideoCatalog{}, fmt.Errorf("decode videos: %w", err)
	}
	return catalog, nil
}

// DecodeLiveAssets decodes the top-level live asset map.
func DecodeLiveAssets(data []byte) (LiveAssets, error) {
	var assets LiveAssets
	if err := json.Unmarshal(data, &assets); err != nil {
		return nil, fmt.Errorf("decode live assets: %w", err)
	}
	if assets == nil {
		assets = LiveAssets{}
	}
	return assets, nil
}
