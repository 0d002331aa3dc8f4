// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的生成客户端指标采集。

# 概述

Collector 实现 generation.Observer，由 AsyncClient、SyncClient、
transport 与 Poller 在关键路径上回调。每个 Collector 使用独立的
prometheus.Registry，通过 promauto.With 注册，Handler 暴露给 /metrics。

# 主要能力

  - 传输层：每次 HTTP 尝试的计数与耗时，按 provider/method/route/outcome 分组。
  - 作业：提交或内联生成的计数与耗时，按 provider/content_type/status 分组。
  - 轮询：轮询循环结果计数与每次循环的查询次数分布。
*/
package metrics
