package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/entity"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/repository"
	"github.com/sudheeshpoolakkal/vespera-sub001/internal/domain/slot"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	// RedisBookedSlotsKeyPrefix + "<doctorId>:<dateKey>" holds the booked times of that day.
	RedisBookedSlotsKeyPrefix = "slots:booked:"

	// RedisSlotVersionKeyPrefix + "<doctorId>:<dateKey>" counts writes to that day.
	RedisSlotVersionKeyPrefix = "slots:version:"

	// loadedMarker is always a member of a cached set so an empty day is still a hit.
	loadedMarker = "-"

	// Batch size for startup sync - process 500 records at a time
	syncBatchSize = 500

	scanBatchSize = 1000
)

// storeIfUnchangedScript replaces the day's set only when no write has bumped
// the version since the caller read it.
// KEYS[1] set, KEYS[2] version; ARGV[1] version read, ARGV[2] ttl seconds, ARGV[3..] members.
var storeIfUnchangedScript = redis.NewScript(`
	local current = redis.call('GET', KEYS[2])
	if (current or '0') ~= ARGV[1] then
		return 0
	end
	redis.call('DEL', KEYS[1])
	redis.call('SADD', KEYS[1], unpack(ARGV, 3))
	redis.call('EXPIRE', KEYS[1], ARGV[2])
	return 1
`)

// markBookedScript bumps the version, then adds the time only to a set that is
// already cached. Adding to a missing key would create a partial set that looks complete.
// KEYS[1] set, KEYS[2] version; ARGV[1] time, ARGV[2] ttl seconds.
var markBookedScript = redis.NewScript(`
	redis.call('INCR', KEYS[2])
	redis.call('EXPIRE', KEYS[2], ARGV[2])
	if redis.call('EXISTS', KEYS[1]) == 0 then
		return 0
	end
	redis.call('SADD', KEYS[1], ARGV[1])
	return 1
`)

// SlotCache mirrors booked times for availability display. It is never consulted
// when deciding whether a booking may proceed.
//
// Every write bumps a per-day version. A reader that missed the cache passes the
// version it saw to Store, which drops the fill if a booking or cancellation
// landed in between.
type SlotCache interface {
	// BookedTimes returns the cached times, the day's version and whether the day was cached.
	BookedTimes(ctx context.Context, doctorID uuid.UUID, date slot.DateKey) ([]slot.TimeSlot, int64, bool, error)
	// Store fills the day unless its version moved past version. Reports whether it wrote.
	Store(ctx context.Context, doctorID uuid.UUID, date slot.DateKey, version int64, times []slot.TimeSlot) (bool, error)
	MarkBooked(ctx context.Context, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) error
	MarkReleased(ctx context.Context, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) error
	Invalidate(ctx context.Context, doctorID uuid.UUID, date slot.DateKey) error
}

type RedisSlotCache struct {
	tx             repository.Transactor
	bookedSlotRepo repository.BookedSlotRepository
	redisClient    *redis.Client
	log            *logrus.Logger
	loc            *time.Location
}

func NewRedisSlotCache(
	tx repository.Transactor,
	bookedSlotRepo repository.BookedSlotRepository,
	redisClient *redis.Client,
	log *logrus.Logger,
	loc *time.Location,
) *RedisSlotCache {
	return &RedisSlotCache{
		tx:             tx,
		bookedSlotRepo: bookedSlotRepo,
		redisClient:    redisClient,
		log:            log,
		loc:            loc,
	}
}

func bookedSlotsKey(doctorID uuid.UUID, date slot.DateKey) string {
	return fmt.Sprintf("%s%s:%s", RedisBookedSlotsKeyPrefix, doctorID, date)
}

func slotVersionKey(doctorID uuid.UUID, date slot.DateKey) string {
	return fmt.Sprintf("%s%s:%s", RedisSlotVersionKeyPrefix, doctorID, date)
}

func (c *RedisSlotCache) BookedTimes(ctx context.Context, doctorID uuid.UUID, date slot.DateKey) ([]slot.TimeSlot, int64, bool, error) {
	pipe := c.redisClient.TxPipeline()
	membersCmd := pipe.SMembers(ctx, bookedSlotsKey(doctorID, date))
	versionCmd := pipe.Get(ctx, slotVersionKey(doctorID, date))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("read booked slots for doctor %s on %s: %w", doctorID, date, err)
	}

	version, err := versionCmd.Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("read slot version for doctor %s on %s: %w", doctorID, date, err)
	}

	members := membersCmd.Val()
	if len(members) == 0 {
		return nil, version, false, nil
	}

	times := make([]slot.TimeSlot, 0, len(members))
	for _, m := range members {
		if m == loadedMarker {
			continue
		}
		times = append(times, slot.TimeSlot(m))
	}
	return times, version, true, nil
}

func (c *RedisSlotCache) Store(ctx context.Context, doctorID uuid.UUID, date slot.DateKey, version int64, times []slot.TimeSlot) (bool, error) {
	keys := []string{bookedSlotsKey(doctorID, date), slotVersionKey(doctorID, date)}

	args := make([]interface{}, 0, len(times)+3)
	args = append(args, strconv.FormatInt(version, 10), c.ttlSeconds(date), loadedMarker)
	for _, t := range times {
		args = append(args, string(t))
	}

	stored, err := storeIfUnchangedScript.Run(ctx, c.redisClient, keys, args...).Int()
	if err != nil {
		return false, fmt.Errorf("store booked slots for doctor %s on %s: %w", doctorID, date, err)
	}
	return stored == 1, nil
}

func (c *RedisSlotCache) MarkBooked(ctx context.Context, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) error {
	keys := []string{bookedSlotsKey(doctorID, date), slotVersionKey(doctorID, date)}
	if err := markBookedScript.Run(ctx, c.redisClient, keys, string(t), c.ttlSeconds(date)).Err(); err != nil {
		return fmt.Errorf("mark %s booked for doctor %s on %s: %w", t, doctorID, date, err)
	}
	return nil
}

func (c *RedisSlotCache) MarkReleased(ctx context.Context, doctorID uuid.UUID, date slot.DateKey, t slot.TimeSlot) error {
	pipe := c.redisClient.TxPipeline()
	c.bumpVersion(ctx, pipe, doctorID, date)
	pipe.SRem(ctx, bookedSlotsKey(doctorID, date), string(t))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark %s released for doctor %s on %s: %w", t, doctorID, date, err)
	}
	return nil
}

func (c *RedisSlotCache) Invalidate(ctx context.Context, doctorID uuid.UUID, date slot.DateKey) error {
	pipe := c.redisClient.TxPipeline()
	c.bumpVersion(ctx, pipe, doctorID, date)
	pipe.Del(ctx, bookedSlotsKey(doctorID, date))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate booked slots for doctor %s on %s: %w", doctorID, date, err)
	}
	return nil
}

func (c *RedisSlotCache) bumpVersion(ctx context.Context, pipe redis.Pipeliner, doctorID uuid.UUID, date slot.DateKey) {
	key := slotVersionKey(doctorID, date)
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, c.calculateTTL(date))
}

// SyncOnStartup drops every cached day and rebuilds today's and future days
// from booked_slots, 500 rows per pipeline.
//
// Should be called BEFORE accepting traffic (during startup/disaster recovery).
func (c *RedisSlotCache) SyncOnStartup(ctx context.Context) error {
	c.log.Info("Starting Redis slot cache re-sync from database...")
	startTime := time.Now()

	if err := c.redisClient.Ping(ctx).Err(); err != nil {
		c.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	if err := c.dropCachedDays(ctx); err != nil {
		return err
	}

	today := slot.DateKeyOf(time.Now().In(c.loc)).Time(c.loc)
	offset := 0
	totalSynced := 0

	for {
		rows, err := c.bookedSlotRepo.FindUpcoming(ctx, c.tx.DB(ctx), today, syncBatchSize, offset)
		if err != nil {
			c.log.Errorf("Failed to query booked slots at offset %d: %+v", offset, err)
			return fmt.Errorf("query booked slots at offset %d: %w", offset, err)
		}

		if len(rows) == 0 {
			if offset == 0 {
				c.log.Info("No upcoming booked slots found for sync")
			}
			break
		}

		// New pipeline per batch keeps memory bounded.
		pipe := c.redisClient.TxPipeline()
		for _, days := range groupByDay(rows) {
			key := bookedSlotsKey(days.doctorID, days.date)
			pipe.SAdd(ctx, key, days.members...)
			pipe.Expire(ctx, key, c.calculateTTL(days.date))
		}

		if _, err := pipe.Exec(ctx); err != nil {
			c.log.Errorf("Failed to execute pipeline for batch at offset %d: %+v", offset, err)
			return fmt.Errorf("pipeline exec at offset %d: %w", offset, err)
		}

		totalSynced += len(rows)

		if len(rows) < syncBatchSize {
			break
		}
		offset += syncBatchSize

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	c.log.Infof("Redis slot cache re-sync completed: %d booked slots synced in %v", totalSynced, time.Since(startTime))
	return nil
}

func (c *RedisSlotCache) dropCachedDays(ctx context.Context) error {
	iter := c.redisClient.Scan(ctx, 0, RedisBookedSlotsKeyPrefix+"*", scanBatchSize).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == scanBatchSize {
			if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("drop cached slot days: %w", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan cached slot days: %w", err)
	}
	if len(keys) > 0 {
		if err := c.redisClient.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("drop cached slot days: %w", err)
		}
	}
	return nil
}

type bookedDay struct {
	doctorID uuid.UUID
	date     slot.DateKey
	members  []interface{}
}

func groupByDay(rows []entity.BookedSlot) []*bookedDay {
	index := make(map[string]*bookedDay)
	var days []*bookedDay
	for _, row := range rows {
		key := bookedSlotsKey(row.DoctorID, row.SlotDate)
		day, ok := index[key]
		if !ok {
			day = &bookedDay{doctorID: row.DoctorID, date: row.SlotDate, members: []interface{}{loadedMarker}}
			index[key] = day
			days = append(days, day)
		}
		day.members = append(day.members, string(row.SlotTime))
	}
	return days
}

// calculateTTL returns TTL: 24 hours after the slot date ends
func (c *RedisSlotCache) calculateTTL(date slot.DateKey) time.Duration {
	expireAt := date.Time(c.loc).AddDate(0, 0, 2)
	ttl := time.Until(expireAt)

	if ttl <= 0 {
		// Past date - short TTL for cleanup
		return 1 * time.Minute
	}

	return ttl
}

func (c *RedisSlotCache) ttlSeconds(date slot.DateKey) int64 {
	return int64(c.calculateTTL(date) / time.Second)
}
