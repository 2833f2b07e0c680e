package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ksit-nexus/backend/config"
)

// Client Redis 客户端封装
// 当前用于 Token 黑名单、未读数缓存和摘要任务锁
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
// 所有方法均容忍 nil 接收者：Redis 不可用时按降级语义返回
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	if c == nil {
		return false, nil
	}
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 未读通知数缓存 ──

const unreadPrefix = "notification:unread:"

// GetUnreadCount 读取未读数缓存；缓存未命中返回 (-1, nil)
func (c *Client) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	if c == nil {
		return -1, nil
	}
	s, err := c.rdb.Get(ctx, unreadPrefix+userID).Result()
	if err == goredis.Nil {
		return -1, nil
	}
	if err != nil {
		return -1, err
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return -1, nil // 脏数据按未命中处理
	}
	return n, nil
}

// SetUnreadCount 写入未读数缓存
func (c *Client) SetUnreadCount(ctx context.Context, userID string, count int64, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	return c.rdb.Set(ctx, unreadPrefix+userID, strconv.FormatInt(count, 10), ttl).Err()
}

// InvalidateUnreadCount 使未读数缓存失效（创建/已读后调用）
func (c *Client) InvalidateUnreadCount(ctx context.Context, userID string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, unreadPrefix+userID).Err()
}

// ── 摘要任务锁 ──

const digestLockPrefix = "digest:lock:"

// AcquireDigestLock 以 SetNX 获取某用户某窗口的摘要生成锁
// 锁只是并发任务间的快捷挡板，幂等性最终由数据库唯一索引保证
func (c *Client) AcquireDigestLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if c == nil {
		return true, nil
	}
	return c.rdb.SetNX(ctx, digestLockPrefix+key, "1", ttl).Result()
}

// ReleaseDigestLock 释放摘要生成锁
func (c *Client) ReleaseDigestLock(ctx context.Context, key string) error {
	if c == nil {
		return nil
	}
	return c.rdb.Del(ctx, digestLockPrefix+key).Err()
}

// ── 速率限制 ──

// CheckRateLimit 固定窗口计数限流：窗口内第 limit+1 次请求起拒绝
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if c == nil {
		return true, nil
	}
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}
