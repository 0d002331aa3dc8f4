// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 jobstore 提供生成作业快照的持久化存储。

# 概述

生成客户端本身不持有作业状态。jobstore 作为可选的持久化协作方，
保存每次提交、查询与轮询返回的作业快照，使同步内联后端这类
不支持状态查询的后端也能通过已保存的快照回答查询。

# 核心接口

  - Store: Save / Get，Save 拒绝状态回退 (ErrStatusRegression)
  - RedisStore: go-redis，JSON 值 + TTL，WATCH 乐观锁
  - SQLStore: GORM，支持 postgres / mysql / sqlite，AutoMigrate 快照表
  - Recorder: 包装 generation.JobClient，自动保存快照

# 使用示例

	db, _ := jobstore.OpenSQL(jobstore.SQLConfig{Driver: "sqlite", DSN: "jobs.db"}, logger)
	store, _ := jobstore.NewSQLStore(db, true, logger)
	client := jobstore.NewRecorder(syncClient, store, logger)
*/
package jobstore
