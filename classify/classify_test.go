package classify

import "testing"

func TestClassify(t *testing.T) {
	c := New()

	tests := []struct {
		url  string
		want Class
	}{
		{"/static/css/app.css", ClassStaticAsset},
		{"/static/js/main.js", ClassStaticAsset},
		{"/manifest.json", ClassStaticAsset},
		{"/favicon.ico", ClassStaticAsset},
		{"/audio/track1.mp3", ClassMediaAsset},
		{"/downloads/voice.wav", ClassMediaAsset},
		{"/downloads/voice.MP3", ClassMediaAsset},
		{"/api/generate", ClassAPICall},
		{"/api/voices", ClassAPICall},
		{"/", ClassOther},
		{"/about", ClassOther},
		{"http://origin:3000/static/app.js", ClassStaticAsset},
		{"http://origin:3000/api/voices?lang=en", ClassAPICall},
	}

	for _, tt := range tests {
		if got := c.Classify(tt.url); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestClassify_IsTotal(t *testing.T) {
	c := New()

	// Malformed or hostile input must still yield a class.
	for _, raw := range []string{"", "://bad", "%zz", "\x00"} {
		if got := c.Classify(raw); got != ClassOther {
			t.Errorf("Classify(%q) = %v, want ClassOther", raw, got)
		}
	}
}

func TestClassify_CustomPrefixes(t *testing.T) {
	c := New(
		WithStaticPrefixes("/assets/"),
		WithAPIPrefixes("/v2/"),
		WithAudioPrefixes("/media/"),
	)

	if got := c.Classify("/assets/app.js"); got != ClassStaticAsset {
		t.Errorf("Classify(/assets/app.js) = %v", got)
	}
	if got := c.Classify("/v2/generate"); got != ClassAPICall {
		t.Errorf("Classify(/v2/generate) = %v", got)
	}
	if got := c.Classify("/media/a.bin"); got != ClassMediaAsset {
		t.Errorf("Classify(/media/a.bin) = %v", got)
	}
	// Audio extension still wins for unknown prefixes.
	if got := c.Classify("/other/a.ogg"); got != ClassMediaAsset {
		t.Errorf("Classify(/other/a.ogg) = %v", got)
	}
}

func TestClass_Role(t *testing.T) {
	if ClassStaticAsset.Role() != "static" {
		t.Error("static role")
	}
	if ClassMediaAsset.Role() != "media" {
		t.Error("media role")
	}
	if ClassAPICall.Role() != "dynamic" {
		t.Error("api role")
	}
	if ClassOther.Role() != "dynamic" {
		t.Error("other role")
	}
}
