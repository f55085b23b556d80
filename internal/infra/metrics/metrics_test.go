package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestChatCounters(t *testing.T) {
	before := testutil.ToFloat64(chatSendsTotal.WithLabelValues("rate_limited"))
	IncChatSend(" Rate_Limited ")
	if got := testutil.ToFloat64(chatSendsTotal.WithLabelValues("rate_limited")); got != before+1 {
		t.Fatalf("expected label normalisation and increment, got %v", got)
	}

	r := testutil.ToFloat64(chatRemoteRetries)
	IncRemoteRetry()
	IncRemoteRetry()
	if got := testutil.ToFloat64(chatRemoteRetries); got != r+2 {
		t.Fatalf("expected 2 retries recorded, got %v", got-r)
	}
}

func TestStoreAndTokens(t *testing.T) {
	IncStoreOp("File", "save", "ok")
	if got := testutil.ToFloat64(storeOperationsTotal.WithLabelValues("file", "save", "ok")); got < 1 {
		t.Fatalf("store op not recorded: %v", got)
	}
	AddTokens("gemini", 10, 4)
	if got := testutil.ToFloat64(aiTokensOut.WithLabelValues("gemini")); got < 4 {
		t.Fatalf("tokens out not recorded: %v", got)
	}
	SetStorePoolConns(4, 3, 1)
	if got := testutil.ToFloat64(storePoolConns.WithLabelValues("acquired")); got != 1 {
		t.Fatalf("unexpected acquired gauge %v", got)
	}
}

func TestMustRegister_Idempotent(t *testing.T) {
	MustRegister()
	MustRegister()
	if len(collectors) == 0 {
		t.Fatal("expected collectors to be enqueued by init")
	}
}

func TestRegisterOn_ExportsQueuedCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	registerOn(reg)
	IncChatSend("ok")
	SetBuildInfo("test", "noop", "memory")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{"chat_sends_total", "build_info"} {
		if !names[want] {
			t.Errorf("collector %s not exported", want)
		}
	}
}
