package listen

import "testing"

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Config
		wantErr bool
	}{
		{name: "empty uses default", input: "  ", want: Default()},
		{name: "port only", input: "19080", want: Config{Port: "19080"}},
		{name: "prefixed port", input: ":19081", want: Config{Port: "19081"}},
		{name: "host only defaults port", input: "0.0.0.0", want: Config{Host: "0.0.0.0", Port: defaultPort}},
		{name: "host and port", input: "localhost:20000", want: Config{Host: "localhost", Port: "20000"}},
		{name: "ipv6 host only", input: "[::1]", want: Config{Host: "::1", Port: defaultPort}},
		{name: "bare ipv6 host", input: "::1", want: Config{Host: "::1", Port: defaultPort}},
		{name: "ipv6 host and port", input: "[::]:21000", want: Config{Host: "::", Port: "21000"}},
		{name: "invalid port", input: ":abc", wantErr: true},
		{name: "port out of range", input: "70000", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestAddressAndDisplayURL(t *testing.T) {
	t.Parallel()

	cfg := Config{Port: "18080"}
	if got := cfg.Address(); got != ":18080" {
		t.Fatalf("Address = %q", got)
	}
	if got := cfg.DisplayURL(); got != "http://localhost:18080/" {
		t.Fatalf("DisplayURL default = %s", got)
	}

	ipv6 := Config{Host: "::1", Port: "18081"}
	if got := ipv6.Address(); got != "[::1]:18081" {
		t.Fatalf("Address ipv6 = %q", got)
	}
	if got := ipv6.DisplayURL(); got != "http://[::1]:18081/" {
		t.Fatalf("DisplayURL ipv6 = %s", got)
	}
}
