/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package store

import (
	"fmt"

	"github.com/joeshaw/envdecode"
)

// envConfig mirrors the environment-overridable builder defaults.
type envConfig struct {
	Locale   string `env:"MFX_LOCALE"`
	TimeZone string `env:"MFX_TIMEZONE"`
	Charset  string `env:"MFX_CHARSET"`
	MaxDepth int    `env:"MFX_MAX_DEPTH"`
}

// BuilderFromEnv returns a Builder pre-populated from MFX_* environment
// variables (MFX_LOCALE, MFX_TIMEZONE, MFX_CHARSET, MFX_MAX_DEPTH).
// Unset variables leave library defaults in place. A malformed value is
// a configuration error and fails here, before any context is usable.
func BuilderFromEnv() (Builder, error) {
	var ec envConfig
	if err := envdecode.StrictDecode(&ec); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return Builder{}, fmt.Errorf("mfx(store): environment defaults: %w", err)
	}
	b := NewBuilder()
	b.Locale = ec.Locale
	b.TimeZone = ec.TimeZone
	b.Charset = ec.Charset
	b.MaxDepth = ec.MaxDepth
	return b, nil
}
