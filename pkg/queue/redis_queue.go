package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisQueue 报告任务的Redis队列实现
type RedisQueue struct {
	client *redis.Client
	prefix string
}

// ReportJob 队列中的报告任务消息
type ReportJob struct {
	JobID       string `json:"job_id"`
	TriggeredBy uint   `json:"triggered_by"` // 发起人ID（0表示定时调度）
	Source      string `json:"source"`       // 任务来源：schedule / manual
	Attempt     int    `json:"attempt"`      // 当前尝试次数
	Created     int64  `json:"created"`
}

// 任务来源常量
const (
	SourceSchedule = "schedule"
	SourceManual   = "manual"
)

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// NewRedisQueue 创建Redis队列实例
func NewRedisQueue(config *Config) *RedisQueue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "inventorywise:queue"
	}

	return &RedisQueue{
		client: client,
		prefix: prefix,
	}
}

// Close 关闭Redis连接
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

// Ping 测试Redis连接
func (q *RedisQueue) Ping() error {
	ctx := context.Background()
	return q.client.Ping(ctx).Err()
}

// Enqueue 将报告任务加入队列（左侧入队）
func (q *RedisQueue) Enqueue(job *ReportJob) error {
	ctx := context.Background()

	if job.Created == 0 {
		job.Created = time.Now().Unix()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("序列化任务消息失败: %v", err)
	}

	if err := q.client.LPush(ctx, q.queueKey(), data).Err(); err != nil {
		return fmt.Errorf("任务入队失败: %v", err)
	}

	return nil
}

// Dequeue 阻塞式出队（右侧出队），超时返回nil
func (q *RedisQueue) Dequeue(timeout time.Duration) (*ReportJob, error) {
	ctx := context.Background()

	result, err := q.client.BRPop(ctx, timeout, q.queueKey()).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("任务出队失败: %v", err)
	}

	// BRPop返回 [key, value]
	if len(result) < 2 {
		return nil, nil
	}

	var job ReportJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("反序列化任务消息失败: %v", err)
	}

	return &job, nil
}

// Requeue 失败重试入队，尝试次数加一
func (q *RedisQueue) Requeue(job *ReportJob) error {
	job.Attempt++
	return q.Enqueue(job)
}

// Length 当前队列长度
func (q *RedisQueue) Length() (int64, error) {
	ctx := context.Background()
	return q.client.LLen(ctx, q.queueKey()).Result()
}

func (q *RedisQueue) queueKey() string {
	return q.prefix + ":stock_report"
}
