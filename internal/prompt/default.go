package prompt

const historyTemplate = `Aja como um especialista da história do rock n roll. Forneça um resumo bem escrito, sucinto e envolvente sobre a história da banda %s em no máximo 5 parágrafos, de no máximo 4 linhas, inclua datas importantes. Se houver menção a qualquer álbum ou música, coloque os títulos em itálico usando asteriscos (ex: *Led Zeppelin IV*). O texto deve conter apenas a informação solicitada, sem introduções. Use apenas acentos do português do Brasil. Não invente nada.`

const profileTemplate = `Aja como um especialista da história do rock n roll. Forneça uma biografia resumida de %s, membro do %s, em no máximo 5 parágrafos. Cada parágrafo deve conter no máximo 4 linhas. Inclua datas importantes, destaque e explique o símbolo dele e estilos e características técnicas. Se houver menção a qualquer álbum ou música, coloque os títulos em itálico usando asteriscos (ex: *Stairway to Heaven*). Não inclua introduções. Use apenas acentos do português do Brasil. Não invente nada.`

const showsTemplate = `Atue como um historiador do rock e curador musical. Sua tarefa é selecionar os %d shows mais relevantes e icônicos da carreira do %s. Esta seleção deve obrigatoriamente incluir o primeiro show oficial da banda e o show de reunião 'Celebration Day' de 2007. Os outros %d shows devem ser escolhidos com base em sua importância histórica, impacto cultural, performances lendárias ou por representarem pontos de virada na carreira da banda. A lista final com os %d shows deve ser apresentada em estrita ordem cronológica. Retorne APENAS um ARRAY JSON estritamente válido com campos: data (dd/mm/aaaa), local, contexto, setlist (array). Se houver menção a qualquer álbum ou música dentro dos valores de string, coloque os títulos em itálico usando asteriscos (ex: *The Song Remains The Same*). Não inclua texto explicativo fora do JSON. Use apenas acentos do português do Brasil. Não invente nada.`
