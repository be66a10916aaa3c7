package core

import (
	"testing"

	"github.com/RecoveryAshes/NewsRaker/internal/crawlers"
)

func TestHeaderManager_MergePrecedence(t *testing.T) {
	configHeaders := map[string]string{
		"User-Agent": "ConfigBot/1.0",
		"Accept":     "application/json",
	}
	cliHeaders := []string{"User-Agent: CliBot/2.0"}

	hm, err := NewHeaderManager(configHeaders, cliHeaders)
	if err != nil {
		t.Fatalf("NewHeaderManager() error = %v", err)
	}

	headers, err := hm.GetHeaders()
	if err != nil {
		t.Fatalf("GetHeaders() error = %v", err)
	}

	// 命令行 > 配置文件 > 默认值
	if got := headers.Get("User-Agent"); got != "CliBot/2.0" {
		t.Errorf("User-Agent = %v, want CliBot/2.0", got)
	}
	if got := headers.Get("Accept"); got != "application/json" {
		t.Errorf("Accept = %v, want application/json", got)
	}
	// 未覆盖的默认头部保留
	if got := headers.Get("Accept-Language"); got == "" {
		t.Error("默认Accept-Language不应丢失")
	}
}

func TestHeaderManager_Defaults(t *testing.T) {
	hm, err := NewHeaderManager(nil, nil)
	if err != nil {
		t.Fatalf("NewHeaderManager() error = %v", err)
	}

	headers, err := hm.GetHeaders()
	if err != nil {
		t.Fatalf("GetHeaders() error = %v", err)
	}
	if got := headers.Get("User-Agent"); got != crawlers.DefaultUserAgent {
		t.Errorf("User-Agent = %v, want %v", got, crawlers.DefaultUserAgent)
	}
}

func TestHeaderManager_InvalidConfigHeader(t *testing.T) {
	configHeaders := map[string]string{"Host": "evil.example.com"}

	if _, err := NewHeaderManager(configHeaders, nil); err == nil {
		t.Error("配置中的禁止头部应返回错误")
	}
}

func TestHeaderManager_InvalidCliHeader(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
	}{
		{"缺少冒号", []string{"BadFormat"}},
		{"禁止头部", []string{"Connection: close"}},
		{"非法名称", []string{"Bad Header: value"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewHeaderManager(nil, tt.headers); err == nil {
				t.Error("非法命令行头部应返回错误")
			}
		})
	}
}
