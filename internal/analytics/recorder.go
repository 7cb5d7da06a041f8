package analytics

import (
	"context"
	"time"

	"github.com/craftfolio/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Recorder applies engagement events to the counter store. All counter
// changes are expressed as atomic in-database increments so concurrent
// events on the same project never lose updates. Set membership
// (unique viewers, likes) is guarded by unique indexes with
// ON CONFLICT DO NOTHING inserts, which makes duplicate events no-ops.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder creates a Recorder on the given database handle
func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{db: db}
}

// utcDay truncates a time to UTC midnight for daily bucket keys
func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ensureStats lazily creates the stats row for a project. Safe to call
// concurrently: the unique index on project_id makes it idempotent.
func (r *Recorder) ensureStats(ctx context.Context, projectID string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}},
			DoNothing: true,
		}).
		Create(&models.ProjectStats{ProjectID: projectID}).Error
}

// bumpDaily increments one column of today's daily bucket, creating the
// row if this is the first event of the day
func (r *Recorder) bumpDaily(ctx context.Context, projectID, column string, at time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "project_id"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				column:       gorm.Expr("project_daily_stats." + column + " + 1"),
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(&models.ProjectDailyStat{
			ProjectID: projectID,
			Day:       utcDay(at),
			Views:     boolToInt(column == "views"),
			Likes:     boolToInt(column == "likes"),
			Comments:  boolToInt(column == "comments"),
		}).Error
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// RecordView counts a view of a project. When viewerID is non-empty the
// viewer is added to the project's unique-viewer set; repeat views by
// the same viewer still increment the view total but not the set.
func (r *Recorder) RecordView(ctx context.Context, projectID, viewerID string, at time.Time) error {
	if err := r.ensureStats(ctx, projectID); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Model(&models.ProjectStats{}).
		Where("project_id = ?", projectID).
		Updates(map[string]interface{}{
			"views_total":             gorm.Expr("views_total + 1"),
			"engagement_interactions": gorm.Expr("engagement_interactions + 1"),
		}).Error
	if err != nil {
		return err
	}

	if viewerID != "" {
		err = r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "project_id"}, {Name: "viewer_id"}},
				DoNothing: true,
			}).
			Create(&models.ProjectViewer{ProjectID: projectID, ViewerID: viewerID}).Error
		if err != nil {
			return err
		}
	}

	if err := r.bumpDaily(ctx, projectID, "views", at); err != nil {
		return err
	}

	// Refresh the presentation cache on the project row
	return r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("view_count", gorm.Expr("view_count + 1")).Error
}

// RecordLike counts a like. A second like from the same user is a no-op:
// the membership insert hits the unique index and nothing is counted.
func (r *Recorder) RecordLike(ctx context.Context, projectID, userID string, at time.Time) error {
	if err := r.ensureStats(ctx, projectID); err != nil {
		return err
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&models.ProjectLike{ProjectID: projectID, UserID: userID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Already liked
		return nil
	}

	err := r.db.WithContext(ctx).Model(&models.ProjectStats{}).
		Where("project_id = ?", projectID).
		Updates(map[string]interface{}{
			"likes_total":             gorm.Expr("likes_total + 1"),
			"engagement_interactions": gorm.Expr("engagement_interactions + 1"),
		}).Error
	if err != nil {
		return err
	}

	if err := r.bumpDaily(ctx, projectID, "likes", at); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("like_count", gorm.Expr("like_count + 1")).Error
}

// RecordUnlike removes a like. Only an actual membership removal
// decrements the total, and the total is floored at zero. The daily
// bucket is increment-only and is not touched.
func (r *Recorder) RecordUnlike(ctx context.Context, projectID, userID string) error {
	res := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectLike{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Was not liked
		return nil
	}

	// All SET expressions see the pre-update row, so the engagement
	// recompute uses the same floored likes value as the counter.
	err := r.db.WithContext(ctx).Model(&models.ProjectStats{}).
		Where("project_id = ?", projectID).
		Updates(map[string]interface{}{
			"likes_total":             gorm.Expr("GREATEST(likes_total - 1, 0)"),
			"engagement_interactions": gorm.Expr("views_total + GREATEST(likes_total - 1, 0) + comments_total"),
		}).Error
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("like_count", gorm.Expr("GREATEST(like_count - 1, 0)")).Error
}

// RecordComment counts a new comment on a project
func (r *Recorder) RecordComment(ctx context.Context, projectID string, at time.Time) error {
	if err := r.ensureStats(ctx, projectID); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).Model(&models.ProjectStats{}).
		Where("project_id = ?", projectID).
		Updates(map[string]interface{}{
			"comments_total":          gorm.Expr("comments_total + 1"),
			"engagement_interactions": gorm.Expr("engagement_interactions + 1"),
		}).Error
	if err != nil {
		return err
	}

	if err := r.bumpDaily(ctx, projectID, "comments", at); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("comment_count", gorm.Expr("comment_count + 1")).Error
}

// RecordCommentRemoved decrements the comment total, floored at zero.
// The daily bucket is increment-only.
func (r *Recorder) RecordCommentRemoved(ctx context.Context, projectID string) error {
	err := r.db.WithContext(ctx).Model(&models.ProjectStats{}).
		Where("project_id = ?", projectID).
		Updates(map[string]interface{}{
			"comments_total":          gorm.Expr("GREATEST(comments_total - 1, 0)"),
			"engagement_interactions": gorm.Expr("views_total + likes_total + GREATEST(comments_total - 1, 0)"),
		}).Error
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("comment_count", gorm.Expr("GREATEST(comment_count - 1, 0)")).Error
}

// Snapshot returns the current counters for a project. Projects with no
// recorded events get a zero-valued snapshot.
func (r *Recorder) Snapshot(ctx context.Context, projectID string) (*models.ProjectStats, error) {
	var stats models.ProjectStats
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		First(&stats).Error
	if err == gorm.ErrRecordNotFound {
		return &models.ProjectStats{ProjectID: projectID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// UniqueViewerCount returns the size of a project's unique-viewer set
func (r *Recorder) UniqueViewerCount(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProjectViewer{}).
		Where("project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

// HasLiked reports whether a user has liked a project
func (r *Recorder) HasLiked(ctx context.Context, projectID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProjectLike{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error
	return count > 0, err
}

// PurgeProject removes all counter rows for a deleted project
func (r *Recorder) PurgeProject(ctx context.Context, projectID string) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("project_id = ?", projectID).Delete(&models.ProjectStats{}).Error; err != nil {
		return err
	}
	if err := db.Where("project_id = ?", projectID).Delete(&models.ProjectDailyStat{}).Error; err != nil {
		return err
	}
	if err := db.Where("project_id = ?", projectID).Delete(&models.ProjectViewer{}).Error; err != nil {
		return err
	}
	return db.Where("project_id = ?", projectID).Delete(&models.ProjectLike{}).Error
}
