package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"inkpress/internal/git"
	"inkpress/internal/types"

	"go.uber.org/zap"
)

const (
	auditPrefix     = "deploy-"
	auditTimeLayout = "20060102T150405.000Z"
)

// BatchDeploy records an audit entry for changes and publishes the working
// tree in a single commit. Push failures are reported as a warning on an
// otherwise successful response.
func (p *Publisher) BatchDeploy(ctx context.Context, changes []types.PendingChange) (*types.DeployResponse, error) {
	if len(changes) == 0 {
		return nil, types.ErrNoChanges
	}

	record := types.AuditRecord{
		DeploymentID: p.newID(),
		Timestamp:    p.now().UTC(),
		Status:       types.AuditStatusPending,
		Changes:      make([]types.AuditChange, 0, len(changes)),
	}
	for _, c := range changes {
		record.Changes = append(record.Changes, types.AuditChange{
			ID:          c.ID,
			Category:    c.Category,
			Description: c.Description,
			CreatedAt:   c.CreatedAt,
		})
	}

	logger := p.logger.With(
		zap.String("deployment_id", record.DeploymentID),
		zap.Int("changes", len(changes)))

	if err := p.writeAudit(record); err != nil {
		logger.Error("Failed to write audit record", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", types.ErrAudit, err)
	}

	res := p.repo.Publish(ctx, commitMessage(changes))
	p.logResult("Batch deploy", res)

	resp := &types.DeployResponse{
		Success:      true,
		DeploymentID: record.DeploymentID,
	}

	switch res.Outcome {
	case git.OutcomeNothingToCommit:
		resp.Message = "No changes to deploy"
		return resp, nil
	case git.OutcomeFailed:
		return nil, fmt.Errorf("failed to %s changes: %w", res.Stage, res.Err)
	case git.OutcomeCommittedNotPushed:
		resp.Message = fmt.Sprintf("Committed %d change(s) locally", len(changes))
		resp.Warning = fmt.Sprintf("Changes committed but push to remote failed: %v", res.Err)
	default:
		resp.Message = fmt.Sprintf("Successfully deployed %d change(s)", len(changes))
	}
	resp.ChangeCount = len(changes)
	resp.Commit = res.Commit

	p.notifyDeploy(types.DeployEvent{
		DeploymentID: record.DeploymentID,
		Outcome:      string(res.Outcome),
		Commit:       res.Commit,
		Warning:      resp.Warning,
		Changes:      record.Changes,
		Timestamp:    record.Timestamp,
	})

	return resp, nil
}

// commitMessage lists one line per change under a summary line
func commitMessage(changes []types.PendingChange) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Admin deploy: %d change(s)\n", len(changes))
	for _, c := range changes {
		b.WriteString("\n- ")
		b.WriteString(c.Summary())
	}
	return b.String()
}

// writeAudit creates a new audit file; existing records are never overwritten
func (p *Publisher) writeAudit(record types.AuditRecord) error {
	if err := os.MkdirAll(p.opts.LogsDir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}

	name := fmt.Sprintf("%s%s-%s.json", auditPrefix,
		record.Timestamp.Format(auditTimeLayout), record.DeploymentID)
	f, err := os.OpenFile(filepath.Join(p.opts.LogsDir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (p *Publisher) notifyDeploy(event types.DeployEvent) {
	if p.notifier == nil {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.notifier.NotifyDeploy(p.ctx, event); err != nil {
			p.logger.Warn("Failed to send deploy notification",
				zap.String("deployment_id", event.DeploymentID),
				zap.Error(err))
		}
	}()
}

// History returns audit records newest first. Records older than since are
// skipped when since is non-zero; limit <= 0 means no limit.
func (p *Publisher) History(limit int, since time.Time) ([]types.AuditRecord, error) {
	entries, err := os.ReadDir(p.opts.LogsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []types.AuditRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), auditPrefix) || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	records := make([]types.AuditRecord, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(p.opts.LogsDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read audit record %s: %w", name, err)
		}

		var rec types.AuditRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			p.logger.Warn("Skipping unreadable audit record",
				zap.String("file", name),
				zap.Error(err))
			continue
		}

		if !since.IsZero() && rec.Timestamp.Before(since) {
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) == limit {
			break
		}
	}
	return records, nil
}
