package lrc

import (
	"fmt"

	"lyricsync-go/logcolors"

	"github.com/liuzl/gocc"
	log "github.com/sirupsen/logrus"
)

// T2SConverter converts traditional Chinese to simplified Chinese with OpenCC
type T2SConverter struct {
	cc *gocc.OpenCC
}

// NewT2SConverter loads the OpenCC t2s dictionaries
func NewT2SConverter() (*T2SConverter, error) {
	cc, err := gocc.New("t2s")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenCC t2s converter: %w", err)
	}
	return &T2SConverter{cc: cc}, nil
}

// Convert returns text unchanged when conversion fails
func (c *T2SConverter) Convert(text string) string {
	if c == nil || c.cc == nil {
		return text
	}
	out, err := c.cc.Convert(text)
	if err != nil {
		log.Debugf("%s t2s conversion failed, keeping original text: %v", logcolors.LogWarning, err)
		return text
	}
	return out
}

// identityConverter leaves text untouched
type identityConverter struct{}

func (identityConverter) Convert(text string) string { return text }

// ConverterFor returns the t2s converter when enabled, falling back to the
// identity converter if the dictionaries cannot be loaded.
func ConverterFor(traditionalToSimplified bool) ScriptConverter {
	if !traditionalToSimplified {
		return identityConverter{}
	}
	c, err := NewT2SConverter()
	if err != nil {
		log.Warnf("%s %v; lyric text will not be converted", logcolors.LogWarning, err)
		return identityConverter{}
	}
	log.Infof("%s OpenCC converter (t2s) initialized", logcolors.LogConfig)
	return c
}
