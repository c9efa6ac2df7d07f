package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tertcoder/garbage-app-backend/config"
	"github.com/tertcoder/garbage-app-backend/internal/repository"
)

const (
	calendarProductID     = "-//garbage-app//pickup calendar//EN"
	calendarEventDuration = time.Hour
	calendarMaxEvents     = 500
)

// CalendarService 区域收运日历（iCalendar）
type CalendarService interface {
	// AreaCalendar 生成区域未来 horizon 天内的收运日历，返回 ICS 文本与建议文件名
	AreaCalendar(ctx context.Context, areaID string) (string, string, error)
}

type calendarService struct {
	repo    *repository.Repository
	feature config.FeatureConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, feature config.FeatureConfig, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, feature: feature, logger: logger, now: time.Now}
}

func (s *calendarService) AreaCalendar(ctx context.Context, areaID string) (string, string, error) {
	area, err := s.repo.Area.GetByID(ctx, areaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", ErrAreaNotFound
		}
		s.logger.Error("查询区域失败", zap.String("area_id", areaID), zap.Error(err))
		return "", "", err
	}

	horizon := s.feature.CalendarHorizonDays
	if horizon <= 0 {
		horizon = 60
	}
	now := s.now().UTC()
	to := now.AddDate(0, 0, horizon)

	schedules, _, err := s.repo.Schedule.Find(ctx, repository.ScheduleQuery{
		AreaID: areaID,
		From:   &now,
		To:     &to,
	}, 0, calendarMaxEvents)
	if err != nil {
		s.logger.Error("查询清运计划失败", zap.String("area_id", areaID), zap.Error(err))
		return "", "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName(fmt.Sprintf("%s 收运日历", area.Name))

	for _, sc := range schedules {
		event := cal.AddEvent(sc.ScheduleID + "@garbage-app")
		event.SetDtStampTime(now)
		event.SetStartAt(sc.PickupDate.UTC())
		event.SetEndAt(sc.PickupDate.UTC().Add(calendarEventDuration))
		event.SetSummary(fmt.Sprintf("%s 垃圾收运 (%s)", area.Name, sc.Type))
		event.SetLocation(fmt.Sprintf("%s / %s", area.Name, area.Zone))
		if sc.Notes != "" {
			event.SetDescription(sc.Notes)
		}
	}

	filename := fmt.Sprintf("area_%s.ics", area.AreaID)
	return cal.Serialize(), filename, nil
}
