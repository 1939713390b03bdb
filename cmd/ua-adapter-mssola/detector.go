package main

import (
	"encoding/json"
	"fmt"

	"github.com/mssola/useragent"

	"github.com/daryltucker/ua-bench/internal/model"
)

type detector struct{}

// nativeResult is the library's own view, kept as the record's raw output.
type nativeResult struct {
	Mozilla      string    `json:"mozilla"`
	Platform     string    `json:"platform"`
	OS           string    `json:"os"`
	OSName       string    `json:"osName"`
	OSVersion    string    `json:"osVersion"`
	Localization string    `json:"localization"`
	Browser      [2]string `json:"browser"`
	Engine       [2]string `json:"engine"`
	Bot          bool      `json:"bot"`
	Mobile       bool      `json:"mobile"`
}

func (detector) Detect(ua string) (model.CanonicalRecord, error) {
	p := useragent.New(ua)

	browser, browserVersion := p.Browser()
	engineName, engineVer := p.Engine()
	osInfo := p.OSInfo()

	native := nativeResult{
		Mozilla:      p.Mozilla(),
		Platform:     p.Platform(),
		OS:           p.OS(),
		OSName:       osInfo.Name,
		OSVersion:    osInfo.Version,
		Localization: p.Localization(),
		Browser:      [2]string{browser, browserVersion},
		Engine:       [2]string{engineName, engineVer},
		Bot:          p.Bot(),
		Mobile:       p.Mobile(),
	}
	raw, err := json.Marshal(native)
	if err != nil {
		return model.CanonicalRecord{}, fmt.Errorf("encode native result: %w", err)
	}

	// Browser() already returns the crawler's name for bots, so both
	// identities come from it.
	id := model.Identity{Name: browser, Version: browserVersion}
	client := model.ResolveClient(id, id, native.Bot)

	return model.CanonicalRecord{
		Device: &model.Device{
			IsMobile: model.Some(native.Mobile),
		},
		Client: &client,
		Platform: &model.Platform{
			Name:    model.Text(osInfo.Name),
			Version: model.Text(osInfo.Version),
		},
		Engine: &model.Engine{
			Name:    model.Text(engineName),
			Version: model.Text(engineVer),
		},
		Raw: raw,
	}, nil
}
