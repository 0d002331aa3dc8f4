// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 prompt 将品牌、产品、代言人等领域数据确定性地组装为图像/视频
生成所需的正向提示词、负向提示词与参考图集合。

# 概述

组装过程是纯函数：同样的 (内容原型, 风格, 变量集合) 永远得到同样的
输出，不做任何网络或磁盘 I/O。

# 核心类型

  - Archetype：内容原型，包含 base 变体以及可选的 talent / product 变体，
    每个变体由 subject、action、environment、art_style、lighting、details
    六个结构段组成。
  - Style：风格预设（minimal / bold / lifestyle / promotional）的修饰语与负向词。
  - Variables：占位符变量集合，{name} 形式替换，未解析的占位符直接删除。
  - Assembler / Result：组装器与组装结果。
  - ReferenceLimits：参考图分桶上限（总数 14，物体 6，人物 5）。

# 组装顺序

正文 → 风格修饰 → 质量修饰（默认开启）→ 自定义追加 → custom_modifier 变量。
负向提示词 = 风格负向词 + 通用负向词（始终存在）。
*/
package prompt
