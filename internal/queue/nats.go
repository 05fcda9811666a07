package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NewNATS constructs a worker answering requests published on subject.
// Workers sharing a subject form one queue group, so each request is
// handled once.
func NewNATS(log *slog.Logger, nc *nats.Conn, subject string, a Analyzer) Worker {
	return &natsWorker{log: log, nc: nc, subject: subject, analyzer: a}
}

type natsWorker struct {
	log      *slog.Logger
	nc       *nats.Conn
	subject  string
	analyzer Analyzer
}

func (w *natsWorker) Serve(ctx context.Context) error {
	group := "workers-" + w.subject
	sub, err := w.nc.QueueSubscribe(w.subject, group, func(msg *nats.Msg) {
		w.handleMessage(ctx, msg)
	})
	if err != nil {
		return err
	}
	w.log.Info("listening for analysis requests", "subject", w.subject, "group", group)
	<-ctx.Done()
	return sub.Drain()
}

func (w *natsWorker) handleMessage(ctx context.Context, msg *nats.Msg) {
	reply := Handle(ctx, w.analyzer, msg.Data)
	if reply.Kind != "" {
		w.log.Warn("analysis request failed", "id", reply.ID, "kind", reply.Kind, "err", reply.Error)
	} else {
		w.log.Info("analysis request done", "id", reply.ID, "tone", reply.Result.Tone)
	}

	if msg.Reply == "" {
		w.log.Warn("request has no reply subject, dropping reply", "id", reply.ID)
		return
	}
	body, err := json.Marshal(reply)
	if err != nil {
		w.log.Error("failed to encode reply", "id", reply.ID, "err", err)
		return
	}
	if err := msg.Respond(body); err != nil {
		w.log.Error("failed to send reply", "id", reply.ID, "err", err)
	}
}
