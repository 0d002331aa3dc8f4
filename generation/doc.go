// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 generation 提供图像/视频生成作业的统一客户端抽象。

# 概述

两类后端执行模型互不兼容：

  - 异步作业队列（AsyncClient）：提交后返回 pending 作业，需要轮询状态。
  - 同步内联生成（SyncClient）：一次调用直接返回结果，例如 Gemini
    generateContent。本地合成一个已处于终态的 Job 以兼容统一接口。

两者都实现 JobClient 接口：SubmitImage、SubmitVideo、GetJobStatus、
CancelJob、PollToCompletion。调用方可以多态地使用任意后端。

# 核心类型

  - ImageRequest / VideoRequest：生成请求。
  - Job / JobStatus：作业快照，状态单调推进，终态不可再变。
  - Limits：各后端的变体数、时长、宽高比、参考图上限。
  - Poller：轮询直到终态或超出 MaxAttempts（PollingTimeout）。
  - Composer：从 EntityProvider 读取品牌/产品/代言人并组装请求。

# 并发

客户端构造后只持有不可变配置，不保存任何作业级可变状态，
可在多个 goroutine 间共享。所有阻塞操作都接受 context.Context。
*/
package generation
