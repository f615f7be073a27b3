package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
)

func TestConstructorsRequireBrokers(t *testing.T) {
	if _, err := NewProducer(); err == nil {
		t.Fatal("producer without brokers")
	}
	if _, err := NewConsumer(); err == nil {
		t.Fatal("consumer without brokers")
	}
}

func TestProducerMetricsShareRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	for i := 0; i < 2; i++ {
		p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithProducerMetrics(reg))
		if err != nil {
			t.Fatalf("NewProducer: %v", err)
		}
		_ = p.Close()
	}
}

func TestEncodeValue(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{[]byte("raw"), "raw"},
		{"text", "text"},
		{map[string]int{"a": 1}, `{"a":1}`},
	}
	for _, c := range cases {
		got, err := encodeValue(c.in)
		if err != nil || string(got) != c.want {
			t.Fatalf("encodeValue(%v) = %q, %v", c.in, got, err)
		}
	}
	if _, err := encodeValue(func() {}); err == nil {
		t.Fatal("func encoded")
	}
}

func TestBackoffWithJitterStaysInRange(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	for attempt := 1; attempt < 10; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		if d < min/2 || d > max {
			t.Fatalf("attempt %d backoff %v", attempt, d)
		}
	}
}

func TestHookChainOrderAndPanic(t *testing.T) {
	var order []string
	first := HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			order = append(order, "before1")
			return ctx, km, append(data, '1'), nil
		},
		After: func(context.Context, string, kafka.Message, []byte, error) { order = append(order, "after1") },
	}
	second := HookFuncs{
		Before: func(ctx context.Context, _ string, km kafka.Message, data []byte) (context.Context, kafka.Message, []byte, error) {
			order = append(order, "before2")
			return ctx, km, append(data, '2'), nil
		},
		After: func(context.Context, string, kafka.Message, []byte, error) { order = append(order, "after2") },
	}
	chain := NewHookChain(first, nil, second)
	_, _, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte("x"))
	if err != nil || string(data) != "x12" {
		t.Fatalf("data %q err %v", data, err)
	}
	chain.AfterHandle(context.Background(), "t", kafka.Message{}, data, nil)
	want := []string{"before1", "before2", "after2", "after1"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order %v", order)
		}
	}

	var notified int
	boom := HookFuncs{
		Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
			panic("boom")
		},
		Err: func(context.Context, string, kafka.Message, []byte, error) { notified++ },
	}
	_, _, _, err = NewHookChain(boom).BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	var he *HookError
	if !errors.As(err, &he) || he.Code != "ERR_PANIC" || notified != 1 {
		t.Fatalf("panic hook err=%v notified=%d", err, notified)
	}
}

func TestHeader(t *testing.T) {
	msg := kafka.Message{Headers: []kafka.Header{{Key: "origin", Value: []byte("node-a")}}}
	if Header(msg, "origin") != "node-a" || Header(msg, "missing") != "" {
		t.Fatal("header lookup")
	}
}
